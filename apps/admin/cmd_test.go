package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"github.com/trezcool/vidyalaya/core"
	"github.com/trezcool/vidyalaya/core/result"
	logsvc "github.com/trezcool/vidyalaya/services/logger"
	inmemdb "github.com/trezcool/vidyalaya/storage/database/inmem"
	"github.com/trezcool/vidyalaya/tests"
)

var examRepo result.Repository

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	db := inmemdb.Open()
	t.Cleanup(db.Reset)
	examRepo = inmemdb.NewExamRepository(db)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	result.InitValidators(validate, translator)

	conf := &core.Config{Env: "TEST", TestMode: true}
	rl := logsvc.NewRollbarLogger(zap.NewNop().Sugar(), conf)
	rl.Enable(false)

	var out bytes.Buffer
	return &commandLine{
		examSvc: result.NewService(examRepo, validate, rl),
		out:     &out,
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			switch {
			case err == nil:
				if tt.wantErr != nil || tt.wantErrStr != "" {
					t.Fatalf("cli.run() expected an error")
				}
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if !strings.Contains(err.Error(), tt.wantErrStr) {
					t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
				}
			default:
				t.Errorf("cli.run() unexpected error = %v", err)
			}
			if tt.wantOut != "" && out.String() != tt.wantOut {
				t.Errorf("cli.run() out = %q, wantOut %q", out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "no database", args: []string{"migrate", "up"}, wantErrStr: "needs the postgres storage driver"},
	})

	cli.migrator = func(command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, out, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
	})
}

func Test_commandLine_calendar(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "adtobs: no date", args: []string{"adtobs"}, wantErr: errHelp},
		{name: "adtobs: unknown flag", args: []string{"adtobs", "-lol"}, wantErr: errHelp},
		{
			name:    "adtobs",
			args:    []string{"adtobs", "-date", "2024-04-15"},
			wantOut: `{"ad":"2024-04-15","bs":"2081-01-03","bs_formatted":"3 Baisakh 2081"}` + "\n",
		},
		{name: "adtobs: malformed", args: []string{"adtobs", "-date", "2024-4"}, wantErrStr: "malformed date"},
		{name: "adtobs: out of range", args: []string{"adtobs", "-date", "1900-01-01"}, wantErrStr: "out of supported range"},
		{
			name:    "bstoad",
			args:    []string{"bstoad", "-date", "2000/1/1"},
			wantOut: `{"ad":"1943-04-14","bs":"2000-01-01","bs_formatted":"1 Baisakh 2000"}` + "\n",
		},
		{name: "bstoad: no date", args: []string{"bstoad"}, wantErr: errHelp},
		{name: "daterange: no end", args: []string{"daterange", "-start", "2024-02-28"}, wantErr: errHelp},
		{
			name:    "daterange",
			args:    []string{"daterange", "-start", "2024-02-28", "-end", "2024-03-01"},
			wantOut: `["2024-02-28","2024-02-29","2024-03-01"]` + "\n",
		},
		{
			name:       "daterange: reversed",
			args:       []string{"daterange", "-start", "2024-03-01", "-end", "2024-02-28"},
			wantErrStr: "out of supported range",
		},
	})
}

func Test_commandLine_prettyOutput(t *testing.T) {
	cli, _ := setup(t)

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatalf("CreateTemp() failed: %v", err)
	}
	defer func() { _ = f.Close() }()
	cli.out = f

	origIsTerminal := isTerminalFunc
	isTerminalFunc = func(int) bool { return true }
	defer func() { isTerminalFunc = origIsTerminal }()

	if err = cli.run([]string{"admin", "adtobs", "-date", "2024-04-15"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	got, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	want := "AD  2024-04-15\nBS  2081-01-03  (3 Baisakh 2081)\n"
	if string(got) != want {
		t.Errorf("cli.run() out = %q, want %q", got, want)
	}
}

func Test_commandLine_result(t *testing.T) {
	cli, out := setup(t)

	exam := testutil.CreateExam(t, examRepo, "First Terminal", "2081-04-15", true, nil)
	testutil.SaveMarks(t, examRepo, exam.ID, "s1",
		result.MarkEntry{SubjectName: "Math", TheoryMarksObtained: null.Float64From(95)},
		result.MarkEntry{SubjectName: "Science", TheoryMarksObtained: null.Float64From(70), PracticalMarksObtained: null.Float64From(24)},
	)

	runCLITests(t, cli, out, []cliTest{
		{name: "no exam", args: []string{"result", "-student", "s1"}, wantErr: errHelp},
		{name: "unknown exam", args: []string{"result", "-exam", "lol", "-student", "s1"}, wantErr: result.ErrExamNotFound},
	})

	t.Run("json", func(t *testing.T) {
		out.Reset()
		if err := cli.run([]string{"admin", "result", "-exam", exam.ID, "-student", "s1,s2"}); err != nil {
			t.Fatalf("cli.run() unexpected error = %v", err)
		}
		var got map[string]result.Processed
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}

		want, err := cli.examSvc.ClassResults(context.Background(), exam.ID, []string{"s1", "s2"})
		if err != nil {
			t.Fatalf("ClassResults() failed: %v", err)
		}
		if got["s1"].Summary != want["s1"].Summary {
			t.Errorf("s1 summary = %+v, want %+v", got["s1"].Summary, want["s1"].Summary)
		}
		if got["s1"].Summary.OverallResultStatus != result.StatusPassed {
			t.Errorf("s1 status = %s, want Passed", got["s1"].Summary.OverallResultStatus)
		}
		if got["s2"].Summary.OverallResultStatus != result.StatusAwaited {
			t.Errorf("s2 status = %s, want Awaited", got["s2"].Summary.OverallResultStatus)
		}
	})
}
