package appeals_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/MuniTrack/MT-Backend/internal/appeals"
	"github.com/MuniTrack/MT-Backend/internal/config"
	"github.com/MuniTrack/MT-Backend/internal/db"
	"github.com/MuniTrack/MT-Backend/internal/notify"
	"github.com/MuniTrack/MT-Backend/internal/tasks"
	"github.com/MuniTrack/MT-Backend/internal/utils"
	"github.com/MuniTrack/MT-Backend/internal/workers"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// dbAvailable tracks whether the database connection was established.
var dbAvailable bool

var (
	testServer     *httptest.Server
	testWorker     workers.Worker
	testSupervisor workers.Worker
)

// stubFetcher maps every session cookie value directly to that user ID.
type stubFetcher struct{}

func (stubFetcher) FindSessionByID(id string) (utils.SessionData, error) {
	return utils.SessionData{UserID: id, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")

	if os.Getenv("DATABASE_URL") == "" {
		// No database available — skip all integration tests gracefully.
		os.Exit(m.Run())
	}

	db.Connect()
	dbAvailable = true

	notifier := notify.LogNotifier{}

	workers.Init()
	tasks.Init(config.Default(), notifier)
	appeals.Init(notifier)

	testWorker = workers.Worker{
		FullName: "Appeal Test Worker",
		Role:     workers.RoleWorker,
		Active:   true,
	}
	if err := db.DB.Create(&testWorker).Error; err != nil {
		panic(err)
	}
	testSupervisor = workers.Worker{
		FullName: "Appeal Test Supervisor",
		Role:     workers.RoleSupervisor,
		Active:   true,
	}
	if err := db.DB.Create(&testSupervisor).Error; err != nil {
		panic(err)
	}

	r := chi.NewRouter()
	r.Mount("/appeals", appeals.SetupRoutes(stubFetcher{}))
	testServer = httptest.NewServer(r)
	defer testServer.Close()

	code := m.Run()

	db.DB.Where("worker_id = ?", testWorker.ID).Delete(&appeals.Appeal{})
	db.DB.Where("assignee_id = ?", testWorker.ID).Delete(&tasks.Task{})
	db.DB.Delete(&testWorker)
	db.DB.Delete(&testSupervisor)

	os.Exit(code)
}

func newAutoRejectedTask(t *testing.T) tasks.Task {
	t.Helper()

	targetLat, targetLon := 31.9, 35.2
	badLat, badLon := 31.91, 35.21
	distance := 1500
	rejectedAt := time.Now()

	task := tasks.Task{
		Title:                    "Disputed fixture " + uuid.NewString(),
		AssigneeID:               testWorker.ID,
		SupervisorID:             testSupervisor.ID,
		TargetLat:                &targetLat,
		TargetLon:                &targetLon,
		Status:                   tasks.StatusRejected,
		AutoRejected:             true,
		FailedCompletionAttempts: 2,
		RejectionReason:          "Completion submitted too far from the task location",
		RejectionDistance:        &distance,
		RejectionLat:             &badLat,
		RejectionLon:             &badLon,
		RejectedAt:               &rejectedAt,
	}
	if err := db.DB.Create(&task).Error; err != nil {
		t.Fatal(err)
	}
	return task
}

func postAs(t *testing.T, callerID uuid.UUID, path string, body interface{}) *http.Response {
	t.Helper()

	payload, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, testServer.URL+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	req.AddCookie(&http.Cookie{Name: "session_id", Value: callerID.String()})
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func submitAppeal(t *testing.T, task tasks.Task) *http.Response {
	t.Helper()
	return postAs(t, testWorker.ID, "/appeals", map[string]interface{}{
		"entity_type": appeals.EntityTask,
		"entity_id":   task.ID,
		"explanation": "I was at the site, GPS drifted badly that afternoon",
	})
}

func TestSubmit_SecondAppealForSameEntityConflicts(t *testing.T) {
	if !dbAvailable {
		t.Skip("DATABASE_URL not set")
	}

	task := newAutoRejectedTask(t)

	resp := submitAppeal(t, task)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first appeal failed with %d", resp.StatusCode)
	}

	resp = submitAppeal(t, task)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for a second appeal on the same entity, got %d", resp.StatusCode)
	}

	var count int64
	db.DB.Model(&appeals.Appeal{}).
		Where("entity_type = ? AND entity_id = ?", appeals.EntityTask, task.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one appeal row, found %d", count)
	}
}

func TestReview_ResolvedAppealIsImmutable(t *testing.T) {
	if !dbAvailable {
		t.Skip("DATABASE_URL not set")
	}

	task := newAutoRejectedTask(t)

	resp := submitAppeal(t, task)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("appeal submission failed with %d", resp.StatusCode)
	}
	var appeal appeals.Appeal
	if err := json.NewDecoder(resp.Body).Decode(&appeal); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	reviewPath := "/appeals/" + appeal.ID.String() + "/review"

	resp = postAs(t, testSupervisor.ID, reviewPath,
		map[string]interface{}{"approve": false, "notes": "evidence does not support the claim"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first review failed with %d", resp.StatusCode)
	}

	// The second verdict must bounce off the resolved appeal without
	// touching the first reviewer's record.
	resp = postAs(t, testSupervisor.ID, reviewPath,
		map[string]interface{}{"approve": true, "notes": "changed my mind"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 re-reviewing a resolved appeal, got %d", resp.StatusCode)
	}

	var got appeals.Appeal
	if err := db.DB.First(&got, "id = ?", appeal.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status != appeals.StatusRejected {
		t.Errorf("expected the first verdict to stand, got status %s", got.Status)
	}
	if got.ReviewNotes != "evidence does not support the claim" {
		t.Errorf("expected original review notes preserved, got %q", got.ReviewNotes)
	}
}
