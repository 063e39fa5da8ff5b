// Command salad is the thin CLI front-end of spec.md §6: train/predict/
// inspect/stats subcommands over the core packages. Flag parsing and
// format selection are explicitly out of scope as *implementation*
// details (spec.md §1), this front-end exists only to exercise the core
// end to end and for interoperability with the CLI surface spec.md §6
// names.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/salad-go/salad/inspect"
	"github.com/salad-go/salad/model"
	"github.com/salad-go/salad/score"
	"github.com/salad-go/salad/serialize"
	"github.com/salad-go/salad/source"
	"github.com/salad-go/salad/train"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: salad <train|predict|inspect|stats> [flags]")
		os.Exit(1)
	}

	mode, args := os.Args[1], os.Args[2:]
	var err error
	switch mode {
	case "train":
		err = runTrain(args, logger)
	case "predict":
		err = runPredict(args, logger)
	case "inspect":
		err = runInspect(args, logger)
	case "stats":
		err = runStats(args, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", mode)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("salad command failed", zap.String("mode", mode), zap.Error(err))
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func runTrain(args []string, logger *zap.Logger) error {
	fs := pflag.NewFlagSet("train", pflag.ContinueOnError)
	input := fs.StringP("input", "i", "", "input samples (one per line)")
	output := fs.StringP("output", "o", "", "model output path")
	n := fs.IntP("n", "n", 3, "n-gram length")
	binary := fs.Bool("binary", false, "bit-mode n-grams")
	delim := fs.StringP("delim", "d", "", "token delimiter string")
	bits := fs.Uint64P("filter-size", "s", 1<<24, "filter size in bits")
	hashSet := fs.String("hash-set", "simple", "hash set: simple or murmur")
	update := fs.BoolP("update", "u", false, "train into an existing model")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" || *output == "" {
		return fmt.Errorf("train requires -i and -o")
	}

	var m *model.Model
	if *update {
		f, err := os.Open(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		m, err = serialize.Load(f)
		if err != nil {
			return err
		}
	} else {
		var err error
		m, err = model.New(*bits, *hashSet, *n, *binary, *delim)
		if err != nil {
			return err
		}
	}

	inF, err := os.Open(*input)
	if err != nil {
		return err
	}
	defer inF.Close()

	if err := trainFromSource(m, inF); err != nil {
		return err
	}

	outF, err := os.Create(*output)
	if err != nil {
		return err
	}
	defer outF.Close()

	logger.Info("trained model", zap.Int("n", m.N()), zap.Bool("binary", m.Binary()), zap.Float64("saturation", m.Saturation()))
	return serialize.Save(m, outF, serialize.FormatText)
}

func trainFromSource(m *model.Model, f *os.File) error {
	src, err := source.NewLineSource(bufio.NewReader(f), 256)
	if err != nil {
		return err
	}
	for {
		batch, err := src.Next()
		if len(batch) > 0 {
			train.Train(m, batch)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func runPredict(args []string, logger *zap.Logger) error {
	fs := pflag.NewFlagSet("predict", pflag.ContinueOnError)
	input := fs.StringP("input", "i", "", "input samples (one per line)")
	modelPath := fs.StringP("bloom", "b", "", "model path")
	output := fs.StringP("output", "o", "", "scores output path")
	badModelPath := fs.String("bad-bloom", "", "second model for two-class scoring")
	nanStr := fs.StringP("nan-str", "r", "nan", "placeholder for NaN scores")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" || *modelPath == "" || *output == "" {
		return fmt.Errorf("predict requires -i, -b and -o")
	}

	good, err := loadModel(*modelPath)
	if err != nil {
		return err
	}
	var bad *model.Model
	if *badModelPath != "" {
		bad, err = loadModel(*badModelPath)
		if err != nil {
			return err
		}
	}

	inF, err := os.Open(*input)
	if err != nil {
		return err
	}
	defer inF.Close()
	outF, err := os.Create(*output)
	if err != nil {
		return err
	}
	defer outF.Close()

	sink := source.NewTextScoreSink(outF, *nanStr)
	src, err := source.NewLineSource(bufio.NewReader(inF), 1)
	if err != nil {
		return err
	}

	count := 0
	for {
		batch, nextErr := src.Next()
		for _, sample := range batch {
			var raw float64
			if bad != nil {
				raw, err = score.TwoClass(good, bad, sample)
				if err != nil {
					return err
				}
			} else {
				raw = score.OneClass(good, sample)
			}
			if err := sink.WriteScore(score.Exported(raw)); err != nil {
				return err
			}
			count++
		}
		if nextErr != nil {
			if errors.Is(nextErr, io.EOF) {
				break
			}
			return nextErr
		}
	}
	logger.Info("scored samples", zap.Int("count", count))
	return nil
}

func runInspect(args []string, logger *zap.Logger) error {
	fs := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	input := fs.StringP("input", "i", "", "input samples (one per line)")
	output := fs.StringP("output", "o", "", "report output path")
	modelPath := fs.StringP("bloom", "b", "", "optional reference model path")
	n := fs.IntP("n", "n", 3, "n-gram length (used only without -b)")
	binary := fs.Bool("binary", false, "bit-mode n-grams (used only without -b)")
	delim := fs.StringP("delim", "d", "", "token delimiter string (used only without -b)")
	bits := fs.Uint64P("filter-size", "s", 1<<24, "filter size in bits (used only without -b)")
	hashSet := fs.String("hash-set", "simple", "hash set: simple or murmur (used only without -b)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" || *output == "" {
		return fmt.Errorf("inspect requires -i and -o")
	}

	var acc *inspect.Accumulator
	if *modelPath != "" {
		ref, err := loadModel(*modelPath)
		if err != nil {
			return err
		}
		acc, err = inspect.NewNonUpdating(ref, ref)
		if err != nil {
			return err
		}
	} else {
		m, err := model.New(*bits, *hashSet, *n, *binary, *delim)
		if err != nil {
			return err
		}
		acc, err = inspect.NewUpdating(m)
		if err != nil {
			return err
		}
	}

	inF, err := os.Open(*input)
	if err != nil {
		return err
	}
	defer inF.Close()
	outF, err := os.Create(*output)
	if err != nil {
		return err
	}
	defer outF.Close()

	sink := source.NewTextInspectionSink(outF)
	src, err := source.NewLineSource(bufio.NewReader(inF), 1)
	if err != nil {
		return err
	}

	count := 0
	for {
		batch, nextErr := src.Next()
		for _, sample := range batch {
			c := acc.Sample(sample)
			if err := sink.WriteInspection(c, len(sample)); err != nil {
				return err
			}
			count++
		}
		if nextErr != nil {
			if errors.Is(nextErr, io.EOF) {
				break
			}
			return nextErr
		}
	}
	logger.Info("inspected samples", zap.Int("count", count))
	return nil
}

func runStats(args []string, logger *zap.Logger) error {
	fs := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	modelPath := fs.StringP("bloom", "b", "", "model path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelPath == "" {
		return fmt.Errorf("stats requires -b")
	}

	m, err := loadModel(*modelPath)
	if err != nil {
		return err
	}
	fmt.Printf("saturation = %.6f\n", m.Saturation())
	logger.Info("stats", zap.Float64("saturation", m.Saturation()), zap.Int("n", m.N()))
	return nil
}

func loadModel(path string) (*model.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return serialize.Load(f)
}
