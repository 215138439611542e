// Command bcffilter is a small demonstration harness for pkg/filter: it
// reads newline-delimited JSON records from stdin, compiles a filter
// expression against a header described by a JSON file, and prints a
// PASS/FAIL verdict plus per-sample mask for each record.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	humanize "github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/SamStudio8/bcftools/pkg/filter"
	"github.com/SamStudio8/bcftools/pkg/vcf"
)

var (
	app         = kingpin.New("bcffilter", "Evaluate a filter expression against newline-delimited JSON records.")
	exprFlag    = app.Flag("expr", "Filter expression, e.g. 'DP>10 & %QUAL>20'.").Short('e').Required().String()
	headerFlag  = app.Flag("header", "Path to a JSON header file describing INFO/FORMAT/FILTER fields and samples.").Short('H').Required().String()
	verboseFlag = app.Flag("verbose", "Enable debug logging.").Short('v').Bool()
	helpCmd     = app.Command("help", "Print the expression grammar and exit.")
)

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))
	if *verboseFlag {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if cmd == helpCmd.FullCommand() {
		if err := filter.Help(os.Stdout); err != nil {
			kingpin.Fatalf("%v", err)
		}
		return
	}

	if err := run(); err != nil {
		kingpin.Fatalf("%v", err)
	}
}

func run() error {
	header, err := loadHeader(*headerFlag)
	if err != nil {
		return err
	}

	prog, err := filter.Compile(header, *exprFlag)
	if err != nil {
		return err
	}
	defer prog.Close()

	log := logrus.WithField("expr", *exprFlag)
	nsamples := header.NSamples()
	total, passed := 0, 0

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var jr vcf.JSONRecord
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(line, &jr); err != nil {
			log.WithError(err).Warn("skipping malformed JSON record")
			continue
		}
		rec := vcf.NewRecordFromJSON(header, jr)

		sitePass, samplePass, err := prog.Evaluate(rec)
		if err != nil {
			log.WithError(err).Warn("skipping record that failed to evaluate")
			continue
		}
		total++
		if sitePass {
			passed++
		}
		fmt.Printf("%s:%d %s %s\n", rec.Chrom(), rec.Pos(), verdictLabel(sitePass), sampleMask(samplePass, nsamples))
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("%s/%s records passed %q\n",
		humanize.Comma(int64(passed)), humanize.Comma(int64(total)), *exprFlag)
	return nil
}

func loadHeader(path string) (*vcf.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var spec vcf.HeaderSpec
	dec := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(f)
	if err := dec.Decode(&spec); err != nil {
		return nil, err
	}
	return vcf.NewHeaderFromSpec(spec), nil
}

func verdictLabel(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func sampleMask(samplePass []bool, nsamples int) string {
	if nsamples == 0 {
		return "-"
	}
	var b strings.Builder
	for i, v := range samplePass {
		if i > 0 {
			b.WriteByte(' ')
		}
		bit := 0
		if v {
			bit = 1
		}
		fmt.Fprintf(&b, "s%d=%d", i, bit)
	}
	return b.String()
}
