package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/vidyalaya/core/calendar"
	"github.com/trezcool/vidyalaya/core/result"
	"github.com/trezcool/vidyalaya/storage/database"
)

// PrepareDB connects to TEST_DATABASE_URL and resets its schema; the test is skipped when the variable is not set.
func PrepareDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.OpenURL(dbURL)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, "reset"); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if err = database.Migrate(db, "up"); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// Subjects returns a theory-only Math subject and a Science subject with a practical.
func Subjects() []result.SubjectSpec {
	return []result.SubjectSpec{
		{Name: "Math", TheoryFM: 100, TheoryPM: 40},
		{
			Name:         "Science",
			TheoryFM:     75,
			TheoryPM:     30,
			HasPractical: true,
			PracticalFM:  null.Float64From(25),
			PracticalPM:  null.Float64From(10),
		},
	}
}

func CreateExam(
	t *testing.T,
	repo result.Repository,
	name, heldOn string,
	isGpaMode bool,
	subjects []result.SubjectSpec,
	createdAt ...time.Time,
) result.Exam {
	t.Helper()

	tstamp := time.Now().UTC().Truncate(time.Microsecond)
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if subjects == nil {
		subjects = Subjects()
	}
	exam := result.Exam{
		ID:        uuid.New().String(),
		Name:      name,
		HeldOn:    calendar.MustParse(heldOn, calendar.BS),
		IsGpaMode: isGpaMode,
		Subjects:  subjects,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	exam, err := repo.CreateExam(context.Background(), exam)
	if err != nil {
		t.Fatalf("CreateExam() failed: %v", err)
	}
	return exam
}

func SaveMarks(t *testing.T, repo result.Repository, examID, studentID string, entries ...result.MarkEntry) {
	t.Helper()

	marks := result.StudentMarks{ExamID: examID, StudentID: studentID, Entries: entries}
	if err := repo.SaveMarks(context.Background(), marks); err != nil {
		t.Fatalf("SaveMarks() failed: %v", err)
	}
}
