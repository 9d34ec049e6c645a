package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/meltforce/irontrack/internal/models"
)

// memDrafts is an in-memory DraftStore. Values round-trip through JSON
// so the fake shares the real store's snapshot semantics.
type memDrafts struct {
	mu       sync.Mutex
	data     map[int][]byte
	puts     int
	putErr   error
	clearErr error
}

func newMemDrafts() *memDrafts {
	return &memDrafts{data: make(map[int][]byte)}
}

func (m *memDrafts) Get(_ context.Context, userID int) (*models.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[userID]
	if !ok {
		return nil, nil
	}
	var w models.Workout
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (m *memDrafts) Put(_ context.Context, userID int, w *models.Workout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return err
	}
	m.data[userID] = raw
	m.puts++
	return nil
}

func (m *memDrafts) Clear(_ context.Context, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	delete(m.data, userID)
	return nil
}

// memSink is an in-memory WorkoutSink.
type memSink struct {
	workouts  []models.Workout
	insertErr error
}

func (m *memSink) InsertCompletedWorkout(_ context.Context, _ int, w models.Workout) (bool, error) {
	if m.insertErr != nil {
		return false, m.insertErr
	}
	m.workouts = append(m.workouts, w)
	return true, nil
}

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seqIDs() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("id_%d", n)
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func startEditor(t *testing.T, drafts DraftStore, now time.Time) *Editor {
	t.Helper()
	e, err := Start(t.Context(), 1, drafts, quietLog(),
		WithClock(fixedClock(now)), WithIDGenerator(seqIDs()))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return e
}

var benchEx = models.Exercise{ID: "ex_1", Name: "Barbell Bench Press", Muscle: models.MuscleChest}

// TestStartNamesByTimeOfDay verifies a fresh workout is named by the
// local hour and persisted immediately.
func TestStartNamesByTimeOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{6, "Morning Workout"},
		{11, "Morning Workout"},
		{12, "Afternoon Workout"},
		{16, "Afternoon Workout"},
		{17, "Evening Workout"},
		{23, "Evening Workout"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			drafts := newMemDrafts()
			now := time.Date(2026, 3, 9, tt.hour, 15, 0, 0, time.UTC)
			e := startEditor(t, drafts, now)

			w := e.Workout()
			if w.Name != tt.want {
				t.Errorf("name at hour %d = %q, want %q", tt.hour, w.Name, tt.want)
			}
			if w.Status != models.StatusActive || !w.StartTime.Equal(now) {
				t.Errorf("workout = %+v, want active starting at %v", w, now)
			}
			if len(w.Exercises) != 0 || w.Volume != 0 {
				t.Errorf("fresh workout not empty: %+v", w)
			}

			// Persisted before any mutation.
			saved, err := drafts.Get(t.Context(), 1)
			if err != nil || saved == nil {
				t.Fatalf("draft after Start = %v, %v; want persisted workout", saved, err)
			}
			if saved.ID != w.ID {
				t.Errorf("draft id = %q, want %q", saved.ID, w.ID)
			}
		})
	}
}

// TestStartResumesDraft verifies an existing draft is resumed rather
// than replaced, and elapsed time is derived from the stored start.
func TestStartResumesDraft(t *testing.T) {
	drafts := newMemDrafts()
	ctx := t.Context()

	start := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	orig := &models.Workout{
		ID: "w1", Name: "Evening Workout", StartTime: start, Status: models.StatusActive,
		Exercises: []models.WorkoutExercise{{ID: "we_1", ExerciseID: "ex_1"}},
	}
	if err := drafts.Put(ctx, 1, orig); err != nil {
		t.Fatal(err)
	}

	now := start.Add(25 * time.Minute)
	e, err := Start(ctx, 1, drafts, quietLog(), WithClock(fixedClock(now)))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if e.Workout().ID != "w1" {
		t.Errorf("resumed id = %q, want w1", e.Workout().ID)
	}
	if got := e.Elapsed(); got != 25*time.Minute {
		t.Errorf("Elapsed() = %v, want 25m", got)
	}
}

// TestResumeAbsent verifies Resume reports no session as nil, not an error.
func TestResumeAbsent(t *testing.T) {
	e, err := Resume(t.Context(), 1, newMemDrafts(), quietLog())
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if e != nil {
		t.Errorf("Resume with no draft = %v, want nil", e)
	}
}

// TestAddExerciseSnapshots verifies the catalog fields are copied and
// one unperformed set is seeded.
func TestAddExerciseSnapshots(t *testing.T) {
	drafts := newMemDrafts()
	e := startEditor(t, drafts, time.Now())

	inst := e.AddExercise(t.Context(), benchEx)

	if inst.ExerciseID != "ex_1" || inst.Name != benchEx.Name || inst.Muscle != models.MuscleChest {
		t.Errorf("instance = %+v, want snapshot of %+v", inst, benchEx)
	}
	if len(inst.Sets) != 1 || inst.Sets[0].Weight != 0 || inst.Sets[0].Reps != 0 || inst.Sets[0].Completed {
		t.Errorf("seeded sets = %+v, want one zeroed incomplete set", inst.Sets)
	}
	if len(e.Workout().Exercises) != 1 {
		t.Fatalf("workout has %d exercises, want 1", len(e.Workout().Exercises))
	}
}

// TestAddSetSeedsFromLast verifies a new set copies weight/reps from
// the exercise's last set, and zeroes when there is none.
func TestAddSetSeedsFromLast(t *testing.T) {
	drafts := newMemDrafts()
	e := startEditor(t, drafts, time.Now())
	ctx := t.Context()

	inst := e.AddExercise(ctx, benchEx)
	e.UpdateSet(ctx, inst.ID, inst.Sets[0].ID, SetWeight(40), SetReps(10))

	set, err := e.AddSet(ctx, inst.ID)
	if err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	if set.Weight != 40 || set.Reps != 10 {
		t.Errorf("seeded set = %.1f×%d, want 40×10", set.Weight, set.Reps)
	}
	if set.Completed {
		t.Error("seeded set starts completed, want incomplete")
	}

	// An exercise whose sets were all removed seeds from zero again.
	for _, s := range e.Workout().ExerciseByID(inst.ID).Sets {
		if err := e.RemoveSet(ctx, inst.ID, s.ID); err != nil {
			t.Fatalf("RemoveSet: %v", err)
		}
	}
	set, err = e.AddSet(ctx, inst.ID)
	if err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	if set.Weight != 0 || set.Reps != 0 {
		t.Errorf("seeded set with no prior = %.1f×%d, want 0×0", set.Weight, set.Reps)
	}

	if _, err := e.AddSet(ctx, "missing"); !errors.Is(err, ErrExerciseNotFound) {
		t.Errorf("AddSet(missing) = %v, want ErrExerciseNotFound", err)
	}
}

// TestUpdateSet verifies tagged updates apply in place, clamp negative
// values, and silently ignore unknown ids.
func TestUpdateSet(t *testing.T) {
	drafts := newMemDrafts()
	e := startEditor(t, drafts, time.Now())
	ctx := t.Context()

	inst := e.AddExercise(ctx, benchEx)
	setID := inst.Sets[0].ID

	e.UpdateSet(ctx, inst.ID, setID, SetWeight(62.5))
	e.UpdateSet(ctx, inst.ID, setID, SetReps(8))

	got := e.Workout().ExerciseByID(inst.ID).SetByID(setID)
	if got.Weight != 62.5 || got.Reps != 8 {
		t.Errorf("set = %.1f×%d, want 62.5×8", got.Weight, got.Reps)
	}

	e.UpdateSet(ctx, inst.ID, setID, SetWeight(-10), SetReps(-1))
	got = e.Workout().ExerciseByID(inst.ID).SetByID(setID)
	if got.Weight != 0 || got.Reps != 0 {
		t.Errorf("negative updates = %.1f×%d, want clamped to 0×0", got.Weight, got.Reps)
	}

	// Unknown ids leave the workout untouched.
	e.UpdateSet(ctx, "missing", setID, SetWeight(99))
	e.UpdateSet(ctx, inst.ID, "missing", SetWeight(99))
	got = e.Workout().ExerciseByID(inst.ID).SetByID(setID)
	if got.Weight != 0 {
		t.Errorf("weight after no-op updates = %.1f, want 0", got.Weight)
	}
}

// TestToggleSet verifies the completed flag flips in place.
func TestToggleSet(t *testing.T) {
	drafts := newMemDrafts()
	e := startEditor(t, drafts, time.Now())
	ctx := t.Context()

	inst := e.AddExercise(ctx, benchEx)
	setID := inst.Sets[0].ID

	done, err := e.ToggleSet(ctx, inst.ID, setID)
	if err != nil || !done {
		t.Fatalf("ToggleSet = %v, %v; want true", done, err)
	}
	done, err = e.ToggleSet(ctx, inst.ID, setID)
	if err != nil || done {
		t.Fatalf("second ToggleSet = %v, %v; want false", done, err)
	}

	if _, err := e.ToggleSet(ctx, inst.ID, "missing"); !errors.Is(err, ErrSetNotFound) {
		t.Errorf("ToggleSet(missing set) = %v, want ErrSetNotFound", err)
	}
	if _, err := e.ToggleSet(ctx, "missing", setID); !errors.Is(err, ErrExerciseNotFound) {
		t.Errorf("ToggleSet(missing exercise) = %v, want ErrExerciseNotFound", err)
	}
}

// TestRemoveSetKeepsEmptyExercise verifies removing the last set leaves
// a zero-set exercise rather than pruning it.
func TestRemoveSetKeepsEmptyExercise(t *testing.T) {
	drafts := newMemDrafts()
	e := startEditor(t, drafts, time.Now())
	ctx := t.Context()

	inst := e.AddExercise(ctx, benchEx)
	if err := e.RemoveSet(ctx, inst.ID, inst.Sets[0].ID); err != nil {
		t.Fatalf("RemoveSet: %v", err)
	}

	ex := e.Workout().ExerciseByID(inst.ID)
	if ex == nil {
		t.Fatal("exercise pruned after last set removed, want kept")
	}
	if len(ex.Sets) != 0 {
		t.Errorf("sets = %+v, want empty", ex.Sets)
	}

	if err := e.RemoveSet(ctx, inst.ID, "missing"); !errors.Is(err, ErrSetNotFound) {
		t.Errorf("RemoveSet(missing) = %v, want ErrSetNotFound", err)
	}
}

// TestRemoveExercise verifies instance removal by id.
func TestRemoveExercise(t *testing.T) {
	drafts := newMemDrafts()
	e := startEditor(t, drafts, time.Now())
	ctx := t.Context()

	a := e.AddExercise(ctx, benchEx)
	b := e.AddExercise(ctx, models.Exercise{ID: "ex_5", Name: "Barbell Row", Muscle: models.MuscleBack})

	if err := e.RemoveExercise(ctx, a.ID); err != nil {
		t.Fatalf("RemoveExercise: %v", err)
	}
	if got := e.Workout().Exercises; len(got) != 1 || got[0].ID != b.ID {
		t.Errorf("exercises = %+v, want only %q", got, b.ID)
	}
	if err := e.RemoveExercise(ctx, a.ID); !errors.Is(err, ErrExerciseNotFound) {
		t.Errorf("second RemoveExercise = %v, want ErrExerciseNotFound", err)
	}
}

// TestFinishComputesFrozenVolume verifies finish sums weight×reps over
// completed sets only, stamps the end time, hands the record to durable
// storage and clears the draft.
func TestFinishComputesFrozenVolume(t *testing.T) {
	drafts := newMemDrafts()
	sink := &memSink{}
	start := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	e := startEditor(t, drafts, start)
	ctx := t.Context()

	inst := e.AddExercise(ctx, benchEx)
	s1 := inst.Sets[0].ID
	e.UpdateSet(ctx, inst.ID, s1, SetWeight(60), SetReps(5))
	if _, err := e.ToggleSet(ctx, inst.ID, s1); err != nil {
		t.Fatal(err)
	}
	s2, err := e.AddSet(ctx, inst.ID)
	if err != nil {
		t.Fatal(err)
	}
	e.UpdateSet(ctx, inst.ID, s2.ID, SetWeight(100), SetReps(10))
	// s2 stays incomplete and must not count.

	w, err := e.Finish(ctx, sink)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if w.Volume != 300 {
		t.Errorf("volume = %.1f, want 300 (completed sets only)", w.Volume)
	}
	if w.Status != models.StatusCompleted || w.EndTime == nil || !w.EndTime.Equal(start) {
		t.Errorf("finished workout = %+v, want completed with end time", w)
	}
	if len(sink.workouts) != 1 || sink.workouts[0].Volume != 300 {
		t.Errorf("sink received %+v, want one workout with volume 300", sink.workouts)
	}

	if saved, _ := drafts.Get(ctx, 1); saved != nil {
		t.Errorf("draft after finish = %+v, want cleared", saved)
	}

	if _, err := e.Finish(ctx, sink); !errors.Is(err, ErrAlreadyFinished) {
		t.Errorf("second Finish = %v, want ErrAlreadyFinished", err)
	}
}

// TestFinishEmptyRejected verifies finish is refused before any state
// change when the workout has no exercises.
func TestFinishEmptyRejected(t *testing.T) {
	drafts := newMemDrafts()
	sink := &memSink{}
	e := startEditor(t, drafts, time.Now())

	if _, err := e.Finish(t.Context(), sink); !errors.Is(err, ErrEmptyWorkout) {
		t.Fatalf("Finish on empty workout = %v, want ErrEmptyWorkout", err)
	}
	if e.Workout().Status != models.StatusActive {
		t.Error("rejected finish mutated workout status")
	}
	if len(sink.workouts) != 0 {
		t.Error("rejected finish reached durable storage")
	}
}

// TestFinishSinkErrorPropagates verifies a failed durable write is
// surfaced, the session stays active, and the draft is kept.
func TestFinishSinkErrorPropagates(t *testing.T) {
	drafts := newMemDrafts()
	sink := &memSink{insertErr: errors.New("network down")}
	e := startEditor(t, drafts, time.Now())
	ctx := t.Context()

	inst := e.AddExercise(ctx, benchEx)
	if _, err := e.ToggleSet(ctx, inst.ID, inst.Sets[0].ID); err != nil {
		t.Fatal(err)
	}

	if _, err := e.Finish(ctx, sink); err == nil {
		t.Fatal("Finish with failing sink = nil error")
	}
	if e.Workout().Status != models.StatusActive {
		t.Error("failed finish flipped status")
	}
	if saved, _ := drafts.Get(ctx, 1); saved == nil {
		t.Error("failed finish cleared draft")
	}

	// The session is still finishable once the sink recovers.
	sink.insertErr = nil
	if _, err := e.Finish(ctx, sink); err != nil {
		t.Errorf("Finish after recovery: %v", err)
	}
}

// TestDiscardLeavesNoTrace verifies discard clears the draft without a
// durable write, regardless of how many mutations happened.
func TestDiscardLeavesNoTrace(t *testing.T) {
	drafts := newMemDrafts()
	e := startEditor(t, drafts, time.Now())
	ctx := t.Context()

	inst := e.AddExercise(ctx, benchEx)
	for i := 0; i < 5; i++ {
		if _, err := e.AddSet(ctx, inst.ID); err != nil {
			t.Fatal(err)
		}
	}

	if err := e.Discard(ctx); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if saved, _ := drafts.Get(ctx, 1); saved != nil {
		t.Errorf("draft after discard = %+v, want nil", saved)
	}
}

// TestAutosaveBestEffort verifies a failing draft write does not block
// mutations: the in-memory workout still advances.
func TestAutosaveBestEffort(t *testing.T) {
	drafts := newMemDrafts()
	e := startEditor(t, drafts, time.Now())

	drafts.putErr = errors.New("disk full")
	inst := e.AddExercise(t.Context(), benchEx)

	if e.Workout().ExerciseByID(inst.ID) == nil {
		t.Error("mutation lost when autosave failed")
	}
}

// TestEveryMutationAutosaves verifies the write-through contract: each
// operation persists a full snapshot.
func TestEveryMutationAutosaves(t *testing.T) {
	drafts := newMemDrafts()
	e := startEditor(t, drafts, time.Now())
	ctx := t.Context()

	base := drafts.puts // Start persisted once
	inst := e.AddExercise(ctx, benchEx)
	set, _ := e.AddSet(ctx, inst.ID)
	e.UpdateSet(ctx, inst.ID, set.ID, SetWeight(50))
	if _, err := e.ToggleSet(ctx, inst.ID, set.ID); err != nil {
		t.Fatal(err)
	}
	if err := e.RemoveSet(ctx, inst.ID, set.ID); err != nil {
		t.Fatal(err)
	}
	if err := e.RemoveExercise(ctx, inst.ID); err != nil {
		t.Fatal(err)
	}

	if got := drafts.puts - base; got != 6 {
		t.Errorf("draft writes for 6 mutations = %d, want 6", got)
	}
}
