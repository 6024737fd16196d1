// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campus-assistant-workers/internal/campus/locations"
	"campus-assistant-workers/internal/campus/tracker"
	"campus-assistant-workers/internal/campus/tuition"
	"campus-assistant-workers/internal/common/config"
	"campus-assistant-workers/internal/common/database"
	"campus-assistant-workers/internal/common/logger"

	// Import all worker packages
	applymenuselection "campus-assistant-workers/internal/workers/admission/apply-menu-selection"
	calculategpa "campus-assistant-workers/internal/workers/gpa/calculate-gpa"
	promptcourseentry "campus-assistant-workers/internal/workers/gpa/prompt-course-entry"
	validategpaform "campus-assistant-workers/internal/workers/gpa/validate-gpa-form"
	buildreply "campus-assistant-workers/internal/workers/infrastructure/build-reply"
	resolvelocation "campus-assistant-workers/internal/workers/location/resolve-location"
	calculatetuition "campus-assistant-workers/internal/workers/tuition/calculate-tuition"
	validatetuitionform "campus-assistant-workers/internal/workers/tuition/validate-tuition-form"
)

const facultyMTEE = "МЭДЭЭЛЛИЙН ТЕХНОЛОГИ, ЭЛЕКТРОНИКИЙН СУРГУУЛЬ"

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

// Unique per test binary run so reruns never collide on tracker keys or
// tuition_runs rows.
var e2eSenderID = fmt.Sprintf("e2e-%d", time.Now().UnixNano())

func locSenderID() string { return e2eSenderID + "-loc" }
func feeSenderID() string { return e2eSenderID + "-fee" }
func gpaSenderID() string { return e2eSenderID + "-gpa" }

func TestMain(m *testing.M) {
	if os.Getenv("E2E_TESTS") != "true" {
		fmt.Println("⏭️ Skipping e2e tests (set E2E_TESTS=true to run against live services)")
		os.Exit(0)
	}

	var err error

	// Initialize Zeebe client with real connection
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         "localhost:26500",
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("❌ Failed to connect to Zeebe: %v", err))
	}

	// Initialize logger
	zapLog, _ = zap.NewProduction()

	// Run tests
	code := m.Run()

	// Cleanup
	zeebeClient.Close()
	os.Exit(code)
}

func TestFullE2E(t *testing.T) {
	// Load config
	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("🚀 Starting FULL E2E Test with real services...")

	// 1. Check all external services are available
	assertAllServicesConnectivity(t, cfg)

	// 2. Create DB tables if needed
	createDatabaseTables(t, cfg)

	// 3. Deploy all BPMN files
	deployAllBPMN(t)

	// 4. Run all 8 workers through a real conversation
	testAllWorkers(t, cfg, zapLog)

	t.Log("✅ ALL TESTS PASSED — Full E2E workflow successful!")
}

func assertAllServicesConnectivity(t *testing.T, cfg *config.Config) {
	t.Log("🔍 Checking service connectivity...")

	// 🔧 FORCE LOCALHOST FOR E2E TESTS
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"

	// --- PostgreSQL ---
	db, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	assert.NoError(t, db.Ping(context.Background()), "❌ PostgreSQL ping failed")
	db.Close()
	t.Log("✅ PostgreSQL connected")

	// --- Redis ---
	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "❌ Redis client creation failed")
	assert.NoError(t, rdb.Ping(context.Background()), "❌ Redis ping failed")
	rdb.Close()
	t.Log("✅ Redis connected")

	// --- Zeebe ---
	_, err = zeebeClient.NewTopologyCommand().Send(context.Background())
	assert.NoError(t, err, "❌ Zeebe topology request failed")
	t.Log("✅ Zeebe connected")
}

// ==========================
// 2. Database Tables Setup
// ==========================
func createDatabaseTables(t *testing.T, cfg *config.Config) {
	t.Log("🔧 Creating database tables...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.GetDB()

	// Same schema the calculate-tuition worker writes into
	queries := []string{
		`CREATE TABLE IF NOT EXISTS identities (
			id BIGSERIAL PRIMARY KEY,
			sender_id VARCHAR(255) UNIQUE NOT NULL,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tuition_runs (
			id VARCHAR(36) PRIMARY KEY,
			identity_id BIGINT REFERENCES identities(id),
			admission_group VARCHAR(50) NOT NULL,
			faculty VARCHAR(255) NOT NULL,
			general_credits NUMERIC NOT NULL,
			major_credits NUMERIC NOT NULL,
			general_rate NUMERIC NOT NULL,
			major_rate NUMERIC NOT NULL,
			total_tuition NUMERIC NOT NULL,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		_, err := db.ExecContext(context.Background(), query)
		if err != nil {
			t.Logf("Warning: Failed to create table: %v", err)
		}
	}

	t.Log("✅ Database tables created/verified")
}

// ==========================
// 3. Deploy All BPMN Files
// ==========================
func deployAllBPMN(t *testing.T) {
	t.Log("🏗️ Deploying BPMN files...")

	// Try multiple possible paths for BPMN directory
	possiblePaths := []string{
		"bpmn",
		"../bpmn",
		"../../bpmn",
	}

	var bpmnDir string
	var files []os.DirEntry

	for _, path := range possiblePaths {
		entries, err := os.ReadDir(path)
		if err == nil {
			bpmnDir = path
			files = entries
			t.Logf("📁 Found BPMN directory: %s", bpmnDir)
			break
		}
	}

	if bpmnDir == "" {
		t.Log("⚠️ BPMN directory not found in any expected location, skipping deployment")
		return
	}

	bpmnCount := 0
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(f.Name()), ".bpmn") {
			continue
		}

		path := filepath.Join(bpmnDir, f.Name())
		t.Logf("📄 Deploying BPMN: %s", path)

		_, err := zeebeClient.NewDeployResourceCommand().AddResourceFile(path).Send(context.Background())
		if err != nil {
			t.Logf("⚠️ Failed to deploy BPMN %s: %v", f.Name(), err)
			// Continue with other files instead of failing
		} else {
			t.Logf("✅ Deployed: %s", f.Name())
			bpmnCount++
		}
	}

	if bpmnCount == 0 {
		t.Log("ℹ️ No BPMN files were successfully deployed")
	} else {
		t.Logf("✅ Successfully deployed %d BPMN files", bpmnCount)
	}
}

// findConfigsDir locates the campus document directory relative to the
// test working directory.
func findConfigsDir(t *testing.T) string {
	possiblePaths := []string{
		"configs",
		"../configs",
		"../../configs",
	}
	for _, path := range possiblePaths {
		if _, err := os.Stat(filepath.Join(path, "pricing.yml")); err == nil {
			return path
		}
	}
	t.Fatal("❌ configs directory with campus documents not found")
	return ""
}

// campusFixtures bundles the shared dependencies the worker tests need.
type campusFixtures struct {
	resolver      *locations.Resolver
	pricing       tuition.PricingTable
	conversations *tracker.Tracker
	db            *sql.DB
	configsDir    string
	log           logger.Logger
}

// ==========================
// 4. Test All 8 Workers
// ==========================
func testAllWorkers(t *testing.T, cfg *config.Config, log *zap.Logger) {
	t.Log("🧪 Testing all 8 workers with real execution...")

	configsDir := findConfigsDir(t)

	catalog, err := locations.LoadCatalog(filepath.Join(configsDir, "locations.yml"))
	require.NoError(t, err, "❌ locations catalog load failed")
	t.Logf("📍 Loaded %d places", len(catalog.All()))

	pricing, err := tuition.LoadPricing(filepath.Join(configsDir, "pricing.yml"))
	require.NoError(t, err, "❌ pricing table load failed")
	t.Logf("💰 Loaded %d admission groups", len(pricing))

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	rdbClient, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdbClient.Close()

	fx := &campusFixtures{
		resolver:      locations.NewResolver(catalog),
		pricing:       pricing,
		conversations: tracker.New(rdbClient, cfg.Campus.Tracker, logger.NewZapAdapter(log)),
		db:            dbClient.GetDB(),
		configsDir:    configsDir,
		log:           logger.NewZapAdapter(log),
	}

	// Ordered like one real conversation: the tuition and GPA flows carry
	// tracker state from step to step.
	t.Run("resolve-location", func(t *testing.T) { testResolveLocation(t, fx) })
	t.Run("apply-menu-selection", func(t *testing.T) { testApplyMenuSelection(t, fx) })
	t.Run("validate-tuition-form", func(t *testing.T) { testValidateTuitionForm(t, fx) })
	t.Run("calculate-tuition", func(t *testing.T) { testCalculateTuition(t, fx) })
	t.Run("validate-gpa-form", func(t *testing.T) { testValidateGpaForm(t, fx) })
	t.Run("prompt-course-entry", func(t *testing.T) { testPromptCourseEntry(t, fx) })
	t.Run("calculate-gpa", func(t *testing.T) { testCalculateGpa(t, fx) })
	t.Run("build-reply", func(t *testing.T) { testBuildReply(t, fx) })
}

// ==========================
// Worker Test Functions
// ==========================

func testResolveLocation(t *testing.T, fx *campusFixtures) {
	handler := resolvelocation.NewHandler(&resolvelocation.Config{
		Timeout: 5 * time.Second,
	}, fx.resolver, fx.conversations, fx.log)

	// Known alias resolves straight to a place card
	out, err := handler.Execute(context.Background(), &resolvelocation.Input{
		SenderID: locSenderID(),
		Text:     "номын сан",
	})
	require.NoError(t, err)
	assert.True(t, out.Resolved, "Library alias should resolve")
	assert.NotEmpty(t, out.PlaceTitle)
	assert.NotEmpty(t, out.PlaceURL)

	// Bare building number needs the dorm-or-academic question first
	out, err = handler.Execute(context.Background(), &resolvelocation.Input{
		SenderID: locSenderID(),
		Text:     "3",
	})
	require.NoError(t, err)
	assert.True(t, out.AskPlaceType, "Bare number should trigger disambiguation")
	assert.False(t, out.Resolved)

	// Answering the question resolves the pending number
	out, err = handler.Execute(context.Background(), &resolvelocation.Input{
		SenderID: locSenderID(),
		Text:     "дотуур байр",
		Intent:   locations.IntentChoosePlaceType,
	})
	require.NoError(t, err)
	assert.True(t, out.Resolved, "Kind answer should resolve the pending number")
}

func testApplyMenuSelection(t *testing.T, fx *campusFixtures) {
	handler := applymenuselection.NewHandler(&applymenuselection.Config{
		Timeout: 5 * time.Second,
	}, fx.conversations, fx.log)

	out, err := handler.Execute(context.Background(), &applymenuselection.Input{
		SenderID: feeSenderID(),
		Action:   "action_set_admission_group_2024_2025",
	})
	require.NoError(t, err)
	assert.Equal(t, "admission_group", out.SlotName)
	assert.Equal(t, "2024_2025", out.SlotValue)

	out, err = handler.Execute(context.Background(), &applymenuselection.Input{
		SenderID: feeSenderID(),
		Action:   "action_set_faculty_mtee",
	})
	require.NoError(t, err)
	assert.Equal(t, "faculty", out.SlotName)
	assert.Equal(t, facultyMTEE, out.SlotValue)

	// Unknown button payloads are rejected, not silently dropped
	_, err = handler.Execute(context.Background(), &applymenuselection.Input{
		SenderID: feeSenderID(),
		Action:   "action_launch_rocket",
	})
	assert.Error(t, err)
}

func testValidateTuitionForm(t *testing.T, fx *campusFixtures) {
	handler := validatetuitionform.NewHandler(&validatetuitionform.Config{
		Timeout: 5 * time.Second,
	}, fx.pricing, fx.conversations, fx.log)

	out, err := handler.Execute(context.Background(), &validatetuitionform.Input{
		SenderID: feeSenderID(),
		Slot:     validatetuitionform.SlotGeneralCredits,
		Value:    float64(15),
	})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.False(t, out.SlotCleared)

	out, err = handler.Execute(context.Background(), &validatetuitionform.Input{
		SenderID: feeSenderID(),
		Slot:     validatetuitionform.SlotMajorCredits,
		Value:    "10",
	})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.False(t, out.SlotCleared)
}

func testCalculateTuition(t *testing.T, fx *campusFixtures) {
	handler := calculatetuition.NewHandler(&calculatetuition.Config{
		Timeout: 10 * time.Second,
	}, fx.pricing, fx.conversations, fx.db, fx.log)

	out, err := handler.Execute(context.Background(), &calculatetuition.Input{
		SenderID: feeSenderID(),
	})
	require.NoError(t, err)

	rates, ok := fx.pricing["2024_2025"][facultyMTEE]
	require.True(t, ok, "pricing.yml should carry the menu faculty")
	expected := 15*(*rates.General) + 10*(*rates.Major)
	assert.InDelta(t, expected, out.TotalTuition, 0.01)
	assert.True(t, out.Persisted, "Run should be recorded in PostgreSQL")
	assert.NotEmpty(t, out.Replies)

	// The run must have landed under the sender's identity row
	var runs int
	err = fx.db.QueryRowContext(context.Background(), `
		SELECT COUNT(*) FROM tuition_runs r
		JOIN identities i ON i.id = r.identity_id
		WHERE i.sender_id = $1`,
		feeSenderID(),
	).Scan(&runs)
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
}

func testValidateGpaForm(t *testing.T, fx *campusFixtures) {
	handler := validategpaform.NewHandler(&validategpaform.Config{
		Timeout: 5 * time.Second,
	}, fx.conversations, fx.log)

	out, err := handler.Execute(context.Background(), &validategpaform.Input{
		SenderID: gpaSenderID(),
		Slot:     validategpaform.SlotNumberOfCourses,
		Value:    float64(2),
	})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.False(t, out.ReadyToFinalize)
}

func testPromptCourseEntry(t *testing.T, fx *campusFixtures) {
	prompter := promptcourseentry.NewHandler(&promptcourseentry.Config{
		Timeout: 5 * time.Second,
	}, fx.conversations, fx.log)
	validator := validategpaform.NewHandler(&validategpaform.Config{
		Timeout: 5 * time.Second,
	}, fx.conversations, fx.log)

	// Course 1: 3 credits, 95% (A+)
	out, err := prompter.Execute(context.Background(), &promptcourseentry.Input{
		SenderID: gpaSenderID(),
		Field:    promptcourseentry.FieldCredit,
	})
	require.NoError(t, err)
	require.Len(t, out.Replies, 1)
	assert.Contains(t, out.Replies[0], "1", "Prompt should carry the course number")

	vOut, err := validator.Execute(context.Background(), &validategpaform.Input{
		SenderID: gpaSenderID(),
		Slot:     validategpaform.SlotCurrentCredit,
		Value:    float64(3),
	})
	require.NoError(t, err)
	assert.True(t, vOut.Valid)

	_, err = prompter.Execute(context.Background(), &promptcourseentry.Input{
		SenderID: gpaSenderID(),
		Field:    promptcourseentry.FieldScore,
	})
	require.NoError(t, err)

	vOut, err = validator.Execute(context.Background(), &validategpaform.Input{
		SenderID: gpaSenderID(),
		Slot:     validategpaform.SlotCurrentScore,
		Value:    float64(95),
	})
	require.NoError(t, err)
	assert.True(t, vOut.Valid)
	assert.False(t, vOut.ReadyToFinalize, "One of two courses confirmed")

	// Course 2: 2 credits, 85% (A-)
	vOut, err = validator.Execute(context.Background(), &validategpaform.Input{
		SenderID: gpaSenderID(),
		Slot:     validategpaform.SlotCurrentCredit,
		Value:    "2",
	})
	require.NoError(t, err)
	assert.True(t, vOut.Valid)

	vOut, err = validator.Execute(context.Background(), &validategpaform.Input{
		SenderID: gpaSenderID(),
		Slot:     validategpaform.SlotCurrentScore,
		Value:    float64(85),
	})
	require.NoError(t, err)
	assert.True(t, vOut.Valid)
	assert.True(t, vOut.ReadyToFinalize, "Last course confirmed")
}

func testCalculateGpa(t *testing.T, fx *campusFixtures) {
	handler := calculategpa.NewHandler(&calculategpa.Config{
		Timeout: 5 * time.Second,
	}, fx.conversations, fx.log)

	out, err := handler.Execute(context.Background(), &calculategpa.Input{
		SenderID: gpaSenderID(),
	})
	require.NoError(t, err)

	// (3cr × 4.0) + (2cr × 3.7) over 5 credits
	assert.InDelta(t, 3.88, out.Gpa, 0.001)
	assert.InDelta(t, 5.0, out.TotalCredits, 0.001)
	require.Len(t, out.Replies, 1)
	assert.Contains(t, out.Replies[0], "GPA")
}

func testBuildReply(t *testing.T, fx *campusFixtures) {
	handler := buildreply.NewHandler(&buildreply.Config{
		Timeout:      5 * time.Second,
		RegistryPath: filepath.Join(fx.configsDir, "replies.json"),
		CacheTTL:     5 * time.Minute,
	}, fx.log)

	out, err := handler.Execute(context.Background(), &buildreply.Input{
		TemplateKey: "utter_greet",
	})
	require.NoError(t, err)
	require.Len(t, out.Replies, 1)
	assert.NotEmpty(t, out.Replies[0])

	// Parameterized template with a channel override
	out, err = handler.Execute(context.Background(), &buildreply.Input{
		TemplateKey: "utter_gpa_start",
		Params:      map[string]string{"example": "5"},
		Channel:     "messenger",
	})
	require.NoError(t, err)
	require.Len(t, out.Replies, 1)
	assert.Contains(t, out.Replies[0], "5")
}

// ==========================
// Benchmark Tests
// ==========================
func BenchmarkHandler_ResolveLocation(b *testing.B) {
	cfg, _ := config.Load()
	catalog, _ := locations.LoadCatalog("../../configs/locations.yml")
	rdbClient, _ := database.NewRedis(cfg.Database.Redis)
	defer rdbClient.Close()

	log := logger.NewStructured("info", "json")
	conversations := tracker.New(rdbClient, cfg.Campus.Tracker, log)

	handler := resolvelocation.NewHandler(&resolvelocation.Config{
		Timeout: 5 * time.Second,
	}, locations.NewResolver(catalog), conversations, log)

	input := &resolvelocation.Input{
		SenderID: "bench-loc",
		Text:     "номын сан",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}

func BenchmarkHandler_ValidateTuitionForm(b *testing.B) {
	cfg, _ := config.Load()
	pricing, _ := tuition.LoadPricing("../../configs/pricing.yml")
	rdbClient, _ := database.NewRedis(cfg.Database.Redis)
	defer rdbClient.Close()

	log := logger.NewStructured("info", "json")
	conversations := tracker.New(rdbClient, cfg.Campus.Tracker, log)

	handler := validatetuitionform.NewHandler(&validatetuitionform.Config{
		Timeout: 5 * time.Second,
	}, pricing, conversations, log)

	input := &validatetuitionform.Input{
		SenderID: "bench-fee",
		Slot:     validatetuitionform.SlotGeneralCredits,
		Value:    float64(15),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}

func BenchmarkHandler_BuildReply(b *testing.B) {
	handler := buildreply.NewHandler(&buildreply.Config{
		Timeout:      5 * time.Second,
		RegistryPath: "../../configs/replies.json",
		CacheTTL:     5 * time.Minute,
	}, logger.NewStructured("info", "json"))

	input := &buildreply.Input{
		TemplateKey: "utter_gpa_start",
		Params:      map[string]string{"example": "5"},
		Channel:     "messenger",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}
