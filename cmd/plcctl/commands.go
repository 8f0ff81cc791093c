// cmd/plcctl/commands.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/api"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/artifact"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/cache"
	commonerrors "github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/errors"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/models"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/session"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/store"
)

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	ctx, span := a.obs.StartSpan(ctx, "plcctl."+cmd)
	defer span.End()

	start := time.Now()
	err := a.run(ctx, cmd, args)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	a.obs.RecordRequest(ctx, cmd, outcome)
	a.obs.RecordRequestDuration(ctx, cmd, time.Since(start))
	return err
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "projects":
		return a.cmdProjects(ctx, args)
	case "upload":
		return a.cmdUpload(ctx, args)
	case "analyze":
		return a.cmdAnalyze(ctx, args)
	case "status":
		return a.cmdStatus(ctx, args)
	case "research":
		return a.cmdResearch(ctx, args)
	case "scrape":
		return a.cmdScrape(ctx, args)
	case "ask":
		return a.cmdAsk(ctx, args)
	case "intelligence":
		return a.cmdIntelligence(ctx, args)
	case "config":
		return a.cmdConfig(ctx, args)
	case "lms":
		return a.cmdLMS(ctx, args)
	case "watch":
		return a.cmdWatch(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// descriptorFor returns the recovery descriptor for a project. When the
// local store has none (the project was created elsewhere), it is
// reconstructed from the server copy and saved for future recoveries.
func (a *app) descriptorFor(ctx context.Context, projectID string) (session.Descriptor, error) {
	desc, err := a.store.Get(ctx, projectID)
	if err == nil {
		return *desc, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return session.Descriptor{}, commonerrors.NewStoreFailedError("get", err)
	}

	project, err := a.client.GetProject(ctx, projectID)
	if err != nil {
		if api.IsNotFound(err) {
			return session.Descriptor{}, commonerrors.NewProjectNotFoundError(projectID)
		}
		return session.Descriptor{}, err
	}

	d := session.Descriptor{
		ID:           project.ID,
		Name:         project.Name,
		CustomerName: project.CustomerName,
		ProductType:  project.ProductType,
		CommunityURL: project.CommunityURL,
	}
	if err := a.store.Save(ctx, d); err != nil {
		a.logger.Warn("descriptor save failed", map[string]interface{}{
			"projectId": projectID,
			"error":     err.Error(),
		})
	}
	return d, nil
}

func (a *app) cmdProjects(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("projects requires an action: list, create, show, delete")
	}

	switch args[0] {
	case "list":
		projects, err := a.client.ListProjects(ctx)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println("No projects.")
			return nil
		}
		fmt.Printf("%-38s %-24s %-18s %s\n", "ID", "NAME", "CUSTOMER", "STATUS")
		for _, p := range projects {
			fmt.Printf("%-38s %-24s %-18s %s\n", p.ID, p.Name, p.CustomerName, p.Status)
		}
		return nil

	case "create":
		fs := flag.NewFlagSet("projects create", flag.ExitOnError)
		name := fs.String("name", "", "Project name")
		customer := fs.String("customer", "", "Customer (municipality) name")
		product := fs.String("product", "", "Product type (permitting, licensing, code-enforcement)")
		communityURL := fs.String("community-url", "", "Community website URL")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		project, err := a.client.CreateProject(ctx, models.CreateProjectRequest{
			Name:         *name,
			CustomerName: *customer,
			ProductType:  *product,
			CommunityURL: *communityURL,
		})
		if err != nil {
			return err
		}

		if err := a.store.Save(ctx, session.Descriptor{
			ID:           project.ID,
			Name:         project.Name,
			CustomerName: project.CustomerName,
			ProductType:  project.ProductType,
			CommunityURL: project.CommunityURL,
		}); err != nil {
			a.logger.Warn("descriptor save failed", map[string]interface{}{
				"projectId": project.ID,
				"error":     err.Error(),
			})
		}

		fmt.Printf("Created project %s (%s)\n", project.ID, project.Name)
		return nil

	case "show":
		fs := flag.NewFlagSet("projects show", flag.ExitOnError)
		id := fs.String("id", "", "Project id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		desc, err := a.descriptorFor(ctx, *id)
		if err != nil {
			return err
		}
		project, err := a.recoverer.EnsureProject(ctx, desc)
		if err != nil {
			return err
		}
		printProject(project)
		return nil

	case "delete":
		fs := flag.NewFlagSet("projects delete", flag.ExitOnError)
		id := fs.String("id", "", "Project id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := a.client.DeleteProject(ctx, *id); err != nil && !api.IsNotFound(err) {
			return err
		}
		if err := a.store.Delete(ctx, *id); err != nil {
			a.logger.Warn("descriptor delete failed", map[string]interface{}{
				"projectId": *id,
				"error":     err.Error(),
			})
		}
		_ = a.cache.Invalidate(ctx, cache.ResearchKey(*id))
		_ = a.cache.Invalidate(ctx, cache.IntelligenceKey(*id))
		fmt.Printf("Deleted project %s\n", *id)
		return nil

	default:
		return fmt.Errorf("unknown projects action: %s", args[0])
	}
}

func (a *app) cmdUpload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	id := fs.String("id", "", "Project id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	paths := fs.Args()
	if *id == "" || len(paths) == 0 {
		return fmt.Errorf("upload requires -id and at least one file")
	}

	var files []api.UploadFile
	var closers []*os.File
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
		closers = append(closers, f)
		files = append(files, api.UploadFile{
			Filename: filepath.Base(p),
			Content:  f,
		})
	}

	desc, err := a.descriptorFor(ctx, *id)
	if err != nil {
		return err
	}

	var project *models.Project
	err = a.recoverer.WithRecovery(ctx, desc, func(ctx context.Context) error {
		p, uerr := a.client.UploadFiles(ctx, *id, files)
		if uerr != nil {
			return uerr
		}
		project = p
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Uploaded %d file(s). Project now holds:\n", len(files))
	for _, f := range project.UploadedFiles {
		fmt.Printf("  %s (%d rows)\n", f.Filename, f.RowsCount)
	}
	return nil
}

func (a *app) cmdAnalyze(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	id := fs.String("id", "", "Project id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	desc, err := a.descriptorFor(ctx, *id)
	if err != nil {
		return err
	}

	fmt.Println("Starting AI analysis...")
	lastPct := -1
	project, err := a.sess.RunAnalysis(ctx, desc, func(pct int, stage string) {
		if pct != lastPct {
			fmt.Printf("  ~%d%% (%s, estimated)\n", pct, stage)
			lastPct = pct
		}
	})
	if err != nil {
		return err
	}

	fmt.Printf("Analysis complete. Project status: %s\n", project.Status)
	if project.Configuration != nil {
		fmt.Printf("  %d record types, %d departments, %d user roles\n",
			len(project.Configuration.RecordTypes),
			len(project.Configuration.Departments),
			len(project.Configuration.UserRoles))
	}
	return nil
}

func (a *app) cmdStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	id := fs.String("id", "", "Project id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	status, err := a.client.GetAnalysisStatus(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("Project %s: %s", status.ProjectID, status.Status)
	if status.Stage != "" {
		fmt.Printf(" (%s)", status.Stage)
	}
	fmt.Println()
	if status.Message != "" {
		fmt.Println(status.Message)
	}
	return nil
}

func (a *app) cmdResearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("research", flag.ExitOnError)
	id := fs.String("id", "", "Project id")
	start := fs.Bool("start", false, "Start a new research job instead of fetching results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *start {
		report, err := a.client.StartResearch(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Printf("Research started (status: %s)\n", report.Status)
		return nil
	}

	report, fromCache, err := a.sess.FetchResearch(ctx, *id)
	if err != nil {
		return err
	}
	printReportHeader("Research", string(report.Status), fromCache)
	if report.Status == models.ReportAvailable {
		printJSON(report.Data)
	} else if !fromCache {
		fmt.Println("No research data. Run 'plcctl research -start' to generate it.")
	}
	return nil
}

func (a *app) cmdScrape(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scrape", flag.ExitOnError)
	id := fs.String("id", "", "Project id")
	agent := fs.String("agent", "", "Agent to run the deep crawl")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *agent == "" {
		return fmt.Errorf("scrape requires -agent")
	}
	report, err := a.client.DeepScrape(ctx, *id, *agent)
	if err != nil {
		return err
	}
	fmt.Printf("Deep scrape started by agent %s (status: %s)\n", *agent, report.Status)
	return nil
}

func (a *app) cmdAsk(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	id := fs.String("id", "", "Project id")
	question := fs.String("question", "", "Question about the project data")
	if err := fs.Parse(args); err != nil {
		return err
	}

	answer, err := a.client.AskConsultant(ctx, *id, *question)
	if err != nil {
		return err
	}
	fmt.Println(answer.Answer)
	if len(answer.Sources) > 0 {
		fmt.Println("Sources:")
		for _, s := range answer.Sources {
			fmt.Printf("  - %s\n", s)
		}
	}
	return nil
}

func (a *app) cmdIntelligence(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("intelligence", flag.ExitOnError)
	id := fs.String("id", "", "Project id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	report, fromCache, err := a.sess.FetchIntelligence(ctx, *id)
	if err != nil {
		return err
	}
	printReportHeader("Intelligence", string(report.Status), fromCache)
	if report.Status == models.ReportAvailable {
		fmt.Printf("Completeness score: %.1f\n", report.CompletenessScore)
		if len(report.SourcesUsed) > 0 {
			fmt.Println("Sources used:")
			for _, s := range report.SourcesUsed {
				fmt.Printf("  - %s\n", s)
			}
		}
		printJSON(report.Enhancements)
	} else if !fromCache {
		fmt.Println("No intelligence report yet. Run analysis first.")
	}
	return nil
}

func (a *app) cmdConfig(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("config requires an action: show, update-record-type, update-department, update-role, deploy")
	}

	action := args[0]
	fs := flag.NewFlagSet("config "+action, flag.ExitOnError)
	id := fs.String("id", "", "Project id")
	file := fs.String("file", "", "JSON file holding the item to update")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	desc, err := a.descriptorFor(ctx, *id)
	if err != nil {
		return err
	}

	switch action {
	case "show":
		var cfg *models.Configuration
		err := a.recoverer.WithRecovery(ctx, desc, func(ctx context.Context) error {
			c, gerr := a.client.GetConfiguration(ctx, *id)
			if gerr != nil {
				return gerr
			}
			cfg = c
			return nil
		})
		if err != nil {
			return err
		}
		printConfiguration(cfg)
		return nil

	case "update-record-type":
		var rt models.RecordType
		if err := readJSONFile(*file, &rt); err != nil {
			return err
		}
		cfg, err := a.client.UpdateRecordType(ctx, *id, rt)
		if err != nil {
			return err
		}
		fmt.Printf("Record type %s updated. Configuration now has %d record types.\n", rt.Name, len(cfg.RecordTypes))
		return nil

	case "update-department":
		var dep models.Department
		if err := readJSONFile(*file, &dep); err != nil {
			return err
		}
		cfg, err := a.client.UpdateDepartment(ctx, *id, dep)
		if err != nil {
			return err
		}
		fmt.Printf("Department %s updated. Configuration now has %d departments.\n", dep.Name, len(cfg.Departments))
		return nil

	case "update-role":
		var role models.UserRole
		if err := readJSONFile(*file, &role); err != nil {
			return err
		}
		cfg, err := a.client.UpdateUserRole(ctx, *id, role)
		if err != nil {
			return err
		}
		fmt.Printf("Role %s updated. Configuration now has %d roles.\n", role.Name, len(cfg.UserRoles))
		return nil

	case "deploy":
		result, err := a.client.DeployConfiguration(ctx, *id)
		if err != nil {
			return err
		}
		if result.Deployed {
			fmt.Println("Configuration deployed.")
		} else {
			fmt.Printf("Deploy not completed: %s\n", result.Message)
		}
		return nil

	default:
		return fmt.Errorf("unknown config action: %s", action)
	}
}

func (a *app) cmdLMS(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lms", flag.ExitOnError)
	id := fs.String("id", "", "Project id")
	artifactType := fs.String("type", "", "Artifact type (e.g. quick-start-guide, training-deck)")
	outDir := fs.String("out", ".", "Output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *artifactType == "" {
		return fmt.Errorf("lms requires -type")
	}

	art, err := a.client.GenerateArtifact(ctx, *id, *artifactType)
	if err != nil {
		return err
	}

	path, err := artifact.Write(art, *outDir)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// cmdWatch polls the project status until interrupted and serves
// Prometheus metrics while running.
func (a *app) cmdWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	id := fs.String("id", "", "Project id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: a.cfg.Metrics.Address, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.logger.Warn("metrics server stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		fmt.Printf("Serving metrics on %s/metrics\n", a.cfg.Metrics.Address)
	}

	desc, err := a.descriptorFor(ctx, *id)
	if err != nil {
		return err
	}

	interval := a.cfg.Polling.GetInterval()
	fmt.Printf("Watching project %s every %s. Ctrl-C to stop.\n", *id, interval)
	for {
		project, err := a.recoverer.EnsureProject(ctx, desc)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			a.reporter.Report("watch", err)
		} else {
			fmt.Printf("[%s] status=%s files=%d\n", time.Now().Format(time.TimeOnly), project.Status, len(project.UploadedFiles))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func printProject(p *models.Project) {
	fmt.Printf("Project:   %s\n", p.ID)
	fmt.Printf("Name:      %s\n", p.Name)
	fmt.Printf("Customer:  %s\n", p.CustomerName)
	fmt.Printf("Product:   %s\n", p.ProductType)
	if p.CommunityURL != "" {
		fmt.Printf("Community: %s\n", p.CommunityURL)
	}
	fmt.Printf("Status:    %s\n", p.Status)
	if len(p.UploadedFiles) > 0 {
		fmt.Println("Files:")
		for _, f := range p.UploadedFiles {
			fmt.Printf("  %s (%d rows)\n", f.Filename, f.RowsCount)
		}
	}
	if p.Configuration != nil {
		printConfiguration(p.Configuration)
	}
}

func printConfiguration(cfg *models.Configuration) {
	fmt.Printf("Configuration: %d record types, %d departments, %d roles\n",
		len(cfg.RecordTypes), len(cfg.Departments), len(cfg.UserRoles))
	for _, rt := range cfg.RecordTypes {
		fmt.Printf("  [%s] %s: %d fields, %d steps, %d fees, %d documents\n",
			rt.ID, rt.Name, len(rt.FormFields), len(rt.WorkflowSteps), len(rt.Fees), len(rt.RequiredDocuments))
	}
	for _, d := range cfg.Departments {
		fmt.Printf("  Department [%s] %s\n", d.ID, d.Name)
	}
	for _, r := range cfg.UserRoles {
		fmt.Printf("  Role [%s] %s\n", r.ID, r.Name)
	}
	if cfg.Summary != "" {
		fmt.Println(cfg.Summary)
	}
}

func printReportHeader(kind, status string, fromCache bool) {
	if fromCache {
		fmt.Printf("%s report (cached copy, server copy unavailable): %s\n", kind, status)
	} else {
		fmt.Printf("%s report: %s\n", kind, status)
	}
}

func printJSON(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var buf interface{}
	if err := json.Unmarshal(raw, &buf); err != nil {
		fmt.Println(string(raw))
		return
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(string(pretty))
}

func readJSONFile(path string, out interface{}) error {
	if path == "" {
		return fmt.Errorf("missing -file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
