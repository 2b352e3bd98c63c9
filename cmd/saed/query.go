package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/sebitommy123/SA/config"
	"github.com/sebitommy123/SA/hub"
	"github.com/sebitommy123/SA/log"
	"github.com/sebitommy123/SA/metrics"
	"github.com/sebitommy123/SA/parse"
	"github.com/sebitommy123/SA/qry"
	"github.com/sebitommy123/SA/render"
	"github.com/sebitommy123/SA/store"
	"github.com/sebitommy123/SA/value"
)

var (
	queryProvidersPath string
	queryConfigPath    string
	queryTrace         bool
)

var queryCmd = &cobra.Command{
	Use:   "query <expression>",
	Short: "Fetch every configured provider once and evaluate a single query against the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryProvidersPath, "providers", "providers.txt", "path to the provider list file")
	queryCmd.Flags().StringVar(&queryConfigPath, "config", "saed.toml", "path to the engine settings file")
	queryCmd.Flags().BoolVar(&queryTrace, "trace", false, "print the per-operator timing breakdown after the result")
}

func runQuery(cmd *cobra.Command, args []string) error {
	eng, err := config.LoadEngine(queryConfigPath)
	if err != nil {
		return err
	}
	list, err := config.LoadProviderList(queryProvidersPath)
	if err != nil {
		return err
	}

	st := store.New()
	met := metrics.New()
	ctx, cancel := context.WithTimeout(context.Background(), eng.FetchTimeout())
	defer cancel()

	var wg sync.WaitGroup
	for _, url := range list.URLs {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			p := hub.NewPoller(url, eng.IntervalFor(url), st, nil, log.Root)
			p.Metrics = met
			if err := p.RunOnce(ctx); err != nil {
				log.Root.Debug("provider fetch failed", "url", url, "err", err)
			}
		}(url)
	}
	wg.Wait()

	snap := st.Acquire()
	defer snap.Release()

	var trace *qry.Trace
	if queryTrace {
		trace = qry.NewTrace()
	}
	ev := qry.New(snap, trace)
	ev.Metrics = met

	chain, err := parseAndValidate(args[0])
	if err != nil {
		return err
	}
	result, err := ev.EvalFromRoot(chain)
	if err != nil {
		return err
	}
	if err := render.Value(os.Stdout, result); err != nil {
		return err
	}
	if trace != nil {
		fmt.Fprint(os.Stderr, trace.Report())
	}
	return nil
}

func parseAndValidate(query string) (*value.Chain, error) {
	chain, err := parse.Parse(query)
	if err != nil {
		return nil, err
	}
	if err := qry.Validate(chain); err != nil {
		return nil, err
	}
	return chain, nil
}
