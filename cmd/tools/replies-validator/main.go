// cmd/tools/replies-validator/main.go
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"campus-assistant-workers/pkg/registry"
)

var registryPath string

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	renderCmd := flag.NewFlagSet("render", flag.ExitOnError)

	// Validate command flags
	validateCmd.StringVar(&registryPath, "path", "configs/replies.json", "Path to replies file")

	// Add command flags
	addCmd.StringVar(&registryPath, "path", "configs/replies.json", "Path to replies file")
	keyAdd := addCmd.String("key", "", "Template key (e.g., utter_greet)")
	text := addCmd.String("text", "", "Reply text, may contain {{param}} placeholders")
	description := addCmd.String("description", "", "Description")
	params := addCmd.String("params", "", "Comma-separated placeholder names the text requires")

	// Render command flags
	renderCmd.StringVar(&registryPath, "path", "configs/replies.json", "Path to replies file")
	keyRender := renderCmd.String("key", "", "Template key to render")
	channel := renderCmd.String("channel", "", "Channel override to apply (e.g., messenger)")
	values := renderCmd.String("values", "", "Comma-separated name=value pairs for the placeholders")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(); err != nil {
			fmt.Printf("Replies validation failed: %v\n", err)
			os.Exit(1)
		}

	case "add":
		addCmd.Parse(os.Args[2:])
		if *keyAdd == "" || *text == "" {
			fmt.Println("Error: key and text are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		template := registry.ReplyTemplate{
			Key:         *keyAdd,
			Description: *description,
			Text:        *text,
			Params:      splitList(*params),
		}
		if err := addTemplate(&template); err != nil {
			fmt.Printf("Error adding template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added template: %s\n", *keyAdd)

	case "render":
		renderCmd.Parse(os.Args[2:])
		if *keyRender == "" {
			fmt.Println("Error: key is required for render.")
			renderCmd.Usage()
			os.Exit(1)
		}
		if err := renderTemplate(*keyRender, *channel, parsePairs(*values)); err != nil {
			fmt.Printf("Error rendering template: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func validateRegistry() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load replies: %w", err)
	}

	if len(reg.Templates) == 0 {
		return fmt.Errorf("replies file contains no templates")
	}

	for _, template := range reg.Templates {
		if err := checkPlaceholders(&template); err != nil {
			return err
		}
	}

	fmt.Printf("Replies validation passed. Found %d templates.\n", len(reg.Templates))
	for _, key := range reg.Keys() {
		fmt.Printf("  %s\n", key)
	}
	return nil
}

// checkPlaceholders cross-checks declared params against the {{name}}
// placeholders actually used by the text and its channel overrides. An
// undeclared placeholder would survive rendering as literal {{name}}
// output, a declared-but-unused param is a stale contract.
func checkPlaceholders(template *registry.ReplyTemplate) error {
	declared := make(map[string]bool, len(template.Params))
	for _, name := range template.Params {
		declared[name] = false
	}

	texts := []string{template.Text}
	for _, override := range template.Channels {
		texts = append(texts, override)
	}

	for _, text := range texts {
		for _, match := range placeholderRe.FindAllStringSubmatch(text, -1) {
			name := match[1]
			if _, ok := declared[name]; !ok {
				return fmt.Errorf("template %s uses undeclared placeholder {{%s}}", template.Key, name)
			}
			declared[name] = true
		}
	}

	for name, used := range declared {
		if !used {
			return fmt.Errorf("template %s declares unused param %q", template.Key, name)
		}
	}
	return nil
}

func addTemplate(template *registry.ReplyTemplate) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		// If file doesn't exist, create new registry
		if errors.Is(err, os.ErrNotExist) {
			reg = &registry.ReplyRegistry{
				Version:   "1.0.0",
				Templates: []registry.ReplyTemplate{},
			}
		} else {
			return fmt.Errorf("failed to load replies: %w", err)
		}
	}

	if _, exists := reg.Template(template.Key); exists {
		return fmt.Errorf("template with key %s already exists", template.Key)
	}

	if err := checkPlaceholders(template); err != nil {
		return err
	}

	reg.Templates = append(reg.Templates, *template)
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	return saveRegistry(reg, registryPath)
}

func renderTemplate(key, channel string, values map[string]string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load replies: %w", err)
	}

	template, ok := reg.Template(key)
	if !ok {
		return fmt.Errorf("template with key %s not found", key)
	}

	text, err := template.Render(values, channel)
	if err != nil {
		return err
	}

	fmt.Println(text)
	return nil
}

// saveRegistry handles saving the replies file
func saveRegistry(reg *registry.ReplyRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal replies: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write replies file: %w", err)
	}

	return nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parsePairs(raw string) map[string]string {
	pairs := map[string]string{}
	for _, item := range splitList(raw) {
		name, value, found := strings.Cut(item, "=")
		if found {
			pairs[name] = value
		}
	}
	return pairs
}

func help() {
	fmt.Print(`
Usage: replies-validator <command> [flags]

Commands:
  validate Validate the reply-template registry file
  add      Add a new reply template to the registry
  render   Render a template to stdout for a quick preview
  help     Show this help message

Examples:
  replies-validator validate -path configs/replies.json
  replies-validator add -key utter_goodbye -text "Баяртай! 👋" -description "Closing line"
  replies-validator render -key utter_gpa_start -channel messenger -values example=5

Use 'replies-validator <command> -h' for more information about a command.

`)
}
