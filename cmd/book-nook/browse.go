// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/pdiddy/book-nook/internal/app"
	"github.com/pdiddy/book-nook/internal/catalog"
	"github.com/pdiddy/book-nook/internal/detail"
	"github.com/pdiddy/book-nook/internal/render"
	"github.com/pdiddy/book-nook/internal/search"
	"github.com/pdiddy/book-nook/pkg/types"
)

const browseHelp = `Type a query to search. Commands:
  :mode title|author   switch search mode (clears results)
  :lang <code>|all     set the language filter and search again
  :open N              show details of result N
  :close               close the detail view
  :save N              save result N to the bookshelf
  :shelf               list the bookshelf
  :remove N            remove bookshelf entry N
  :help                show this help
  :quit                leave`

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Search and manage the bookshelf interactively",
	Long: `Browse opens an interactive shell over one search session, one detail
view and the bookshelf. Free text searches; lines starting with ':' are
commands (see :help).`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	browseCmd.Flags().String("history", "", "history file (default: ~/.local/share/book-nook/history)")

	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	ctx := cmd.Context()

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		stop := serveMetrics(a, addr)
		defer stop()
	}

	sh := newShell(ctx, a, cmd.OutOrStdout())
	defer sh.close()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(sh.complete)

	history, _ := cmd.Flags().GetString("history")
	if history == "" && a.Config.Shelf.Path != "" {
		history = filepath.Join(a.Config.Shelf.Path, "history")
	}
	if history != "" {
		if f, err := os.Open(history); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(history); err == nil {
				_, _ = line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	fmt.Fprintln(sh.out, "book-nook browse. Type :help for commands.")
	for {
		input, err := line.Prompt("book-nook> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if quit := sh.exec(input); quit {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// serveMetrics exposes the App's metrics registry until the returned func
// is called.
func serveMetrics(a *app.App, addr string) func() {
	srv := &http.Server{Addr: addr, Handler: metricsRouter(a), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.WithError(err).Warn("metrics server stopped")
		}
	}()
	a.Log.WithField("addr", addr).Info("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func metricsRouter(a *app.App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// shell interprets browse input against one search session and one
// detail view. It waits for each request so output stays in order.
type shell struct {
	ctx  context.Context
	app  *app.App
	orch *search.Orchestrator
	insp *detail.Inspector
	out  io.Writer
}

func newShell(ctx context.Context, a *app.App, out io.Writer) *shell {
	return &shell{
		ctx:  ctx,
		app:  a,
		orch: a.NewOrchestrator(),
		insp: a.NewInspector(),
		out:  out,
	}
}

func (s *shell) close() {
	s.insp.Close()
	s.orch.Close()
	s.insp.Wait()
}

// exec runs one line of input and reports whether the shell should exit.
func (s *shell) exec(input string) bool {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, ":") {
		s.search(input)
		return false
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(input, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "q", "quit", "exit":
		return true
	case "help", "h":
		fmt.Fprintln(s.out, browseHelp)
	case "mode":
		mode, err := types.ParseSearchMode(arg)
		if err != nil {
			s.fail(err)
			return false
		}
		s.orch.SetMode(mode)
		s.status()
	case "lang":
		lang, err := catalog.ParseLanguage(arg)
		if err != nil {
			s.fail(err)
			return false
		}
		s.await(s.orch.SetLanguage(s.ctx, lang))
	case "open":
		rec, ok := s.result(arg)
		if !ok {
			return false
		}
		saved := s.app.Shelf.Has(rec.Key)
		if rec.LookupKey() != "" {
			_ = render.View(s.out, detail.Merge(rec, nil, s.app.Catalog), true, "", saved)
		}
		<-s.insp.Open(s.ctx, rec)
		v := s.insp.View()
		if v.Open {
			_ = render.View(s.out, v.Record, v.Loading, v.Error, s.app.Shelf.Has(v.Record.Key))
		}
	case "close":
		s.insp.Close()
	case "save":
		rec, ok := s.result(arg)
		if !ok {
			return false
		}
		if s.app.Shelf.Add(rec) {
			fmt.Fprintf(s.out, "Saved %q.\n", rec.Title)
		} else {
			fmt.Fprintf(s.out, "%q is already on your bookshelf.\n", rec.Title)
		}
	case "shelf":
		_ = render.Shelf(s.out, s.app.Shelf.List())
	case "remove":
		entries := s.app.Shelf.List()
		rec, err := pick(entries, atoi(arg))
		if err != nil {
			s.fail(err)
			return false
		}
		s.app.Shelf.Remove(rec.Key)
		fmt.Fprintf(s.out, "Removed %q.\n", rec.Title)
	default:
		s.fail(fmt.Errorf("unknown command :%s (try :help)", name))
	}
	return false
}

func (s *shell) search(text string) {
	s.orch.SetQuery(text)
	s.await(s.orch.Submit(s.ctx))
}

// await prints the loading line, waits for the request and prints the
// outcome.
func (s *shell) await(done <-chan struct{}) {
	if st := s.orch.State(); st.Status == types.StatusLoading {
		_ = render.Status(s.out, st)
	}
	<-done
	s.status()
}

func (s *shell) status() {
	st := s.orch.State()
	_ = render.Status(s.out, st)
	if st.Status == types.StatusReady {
		_ = render.Results(s.out, st.Results, st.Total)
	}
}

func (s *shell) result(arg string) (types.SearchRecord, bool) {
	rec, err := pick(s.orch.State().Results, atoi(arg))
	if err != nil {
		s.fail(err)
		return types.SearchRecord{}, false
	}
	return rec, true
}

func (s *shell) fail(err error) {
	fmt.Fprintln(s.out, "error:", err)
}

func (s *shell) complete(line string) []string {
	if !strings.HasPrefix(line, ":") {
		return nil
	}
	var out []string
	for _, c := range []string{":mode ", ":lang ", ":open ", ":close", ":save ", ":shelf", ":remove ", ":help", ":quit"} {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
