package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/trezcool/vidyalaya/core/calendar"
	"github.com/trezcool/vidyalaya/core/result"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	migrator func(command string, args ...string) error
	examSvc  result.ServiceInterface
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]              - run a goose command (up, down, status, ...) on the database")
	fmt.Fprintln(cli.out, "  adtobs -date YYYY-MM-DD             - convert a Gregorian date to Bikram Sambat")
	fmt.Fprintln(cli.out, "  bstoad -date YYYY-MM-DD             - convert a Bikram Sambat date to Gregorian")
	fmt.Fprintln(cli.out, "  daterange -start DATE -end DATE     - list the Gregorian dates of a range")
	fmt.Fprintln(cli.out, "  result -exam ID -student ID[,ID...] - process the results of students in an exam")
}

// pretty reports whether output goes to a terminal rather than a pipe or file.
func (cli *commandLine) pretty() bool {
	f, ok := cli.out.(*os.File)
	return ok && isTerminalFunc(int(f.Fd()))
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	adToBsCmd := flag.NewFlagSet("adtobs", flag.ContinueOnError)
	adToBsDate := adToBsCmd.String("date", "", "The Gregorian date, YYYY-MM-DD.")

	bsToAdCmd := flag.NewFlagSet("bstoad", flag.ContinueOnError)
	bsToAdDate := bsToAdCmd.String("date", "", "The Bikram Sambat date, YYYY-MM-DD.")

	dateRangeCmd := flag.NewFlagSet("daterange", flag.ContinueOnError)
	dateRangeStart := dateRangeCmd.String("start", "", "The first Gregorian date, YYYY-MM-DD.")
	dateRangeEnd := dateRangeCmd.String("end", "", "The last Gregorian date, YYYY-MM-DD.")

	resultCmd := flag.NewFlagSet("result", flag.ContinueOnError)
	resultExam := resultCmd.String("exam", "", "The exam ID.")
	resultStudents := resultCmd.String("student", "", "Comma separated student IDs.")

	for _, fs := range []*flag.FlagSet{adToBsCmd, bsToAdCmd, dateRangeCmd, resultCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adtobs":
		if err := adToBsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *adToBsDate == "" {
			adToBsCmd.Usage()
			return errHelp
		}
		return cli.adToBs(*adToBsDate)
	case "bstoad":
		if err := bsToAdCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *bsToAdDate == "" {
			bsToAdCmd.Usage()
			return errHelp
		}
		return cli.bsToAd(*bsToAdDate)
	case "daterange":
		if err := dateRangeCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *dateRangeStart == "" || *dateRangeEnd == "" {
			dateRangeCmd.Usage()
			return errHelp
		}
		return cli.dateRange(*dateRangeStart, *dateRangeEnd)
	case "result":
		if err := resultCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resultExam == "" || *resultStudents == "" {
			resultCmd.Usage()
			return errHelp
		}
		return cli.result(*resultExam, strings.Split(*resultStudents, ","))
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate(args []string) error {
	if cli.migrator == nil {
		return errors.New("migrate needs the postgres storage driver")
	}
	return cli.migrator(args[0], args[1:]...)
}

func (cli *commandLine) adToBs(date string) error {
	ad, err := calendar.Parse(date, calendar.AD)
	if err != nil {
		return err
	}
	bs, err := calendar.ADToBS(ad)
	if err != nil {
		return err
	}
	return cli.printConversion(ad, bs)
}

func (cli *commandLine) bsToAd(date string) error {
	bs, err := calendar.Parse(date, calendar.BS)
	if err != nil {
		return err
	}
	ad, err := calendar.BSToAD(bs)
	if err != nil {
		return err
	}
	return cli.printConversion(ad, bs)
}

func (cli *commandLine) printConversion(ad, bs calendar.Date) error {
	if !cli.pretty() {
		return json.NewEncoder(cli.out).Encode(map[string]string{
			"ad":           ad.String(),
			"bs":           bs.String(),
			"bs_formatted": calendar.FormatBS(bs),
		})
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "AD\t%s\n", ad)
	fmt.Fprintf(w, "BS\t%s\t(%s)\n", bs, calendar.FormatBS(bs))
	return w.Flush()
}

func (cli *commandLine) dateRange(start, end string) error {
	s, err := calendar.Parse(start, calendar.AD)
	if err != nil {
		return err
	}
	e, err := calendar.Parse(end, calendar.AD)
	if err != nil {
		return err
	}
	rng, err := calendar.NewDateRange(s, e)
	if err != nil {
		return err
	}

	if !cli.pretty() {
		dates := make([]string, 0, rng.Len())
		rng.Each(func(d calendar.Date) bool {
			dates = append(dates, d.String())
			return true
		})
		return json.NewEncoder(cli.out).Encode(dates)
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AD\tBS")
	var convErr error
	rng.Each(func(d calendar.Date) bool {
		bs, err := calendar.ADToBS(d)
		if err != nil {
			convErr = err
			return false
		}
		fmt.Fprintf(w, "%s\t%s\n", d, bs)
		return true
	})
	if convErr != nil {
		return convErr
	}
	return w.Flush()
}

func (cli *commandLine) result(examID string, studentIDs []string) error {
	results, err := cli.examSvc.ClassResults(context.Background(), examID, studentIDs)
	if err != nil {
		return err
	}
	if !cli.pretty() {
		return json.NewEncoder(cli.out).Encode(results)
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STUDENT\tSTATUS\tGPA\tGRADE\tTOTAL\tPERCENTAGE")
	for _, sid := range studentIDs {
		res, ok := results[strings.TrimSpace(sid)]
		if !ok {
			continue
		}
		sum := res.Summary
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			strings.TrimSpace(sid), sum.OverallResultStatus,
			nullStr(sum.FinalGpa.Valid, sum.FinalGpa.Float64),
			sum.FinalGrade,
			nullStr(sum.GrandTotalMarks.Valid, sum.GrandTotalMarks.Float64),
			nullStr(sum.TotalPercentage.Valid, sum.TotalPercentage.Float64),
		)
	}
	return w.Flush()
}

func nullStr(valid bool, f float64) string {
	if !valid {
		return "-"
	}
	return fmt.Sprintf("%g", f)
}
