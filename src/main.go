package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/robfig/cron"

	"DelayInsight/src/config"
	emailsource "DelayInsight/src/datasource/email"
	filesource "DelayInsight/src/datasource/file"
	"DelayInsight/src/dataset"
	"DelayInsight/src/processor"
	"DelayInsight/src/report"
	"DelayInsight/src/storage"
	"DelayInsight/src/utils"
)

func main() {
	configDir := flag.String("config", "./config", "directory holding config.json and dataconfig.json")
	workbook := flag.String("workbook", "", "analyse this workbook instead of the bundled dataset")
	watch := flag.Bool("watch", false, "keep running and re-analyse workbooks dropped into the data dir")
	mailReport := flag.Bool("mail-report", false, "email the rendered report to the configured recipients")
	export := flag.String("export", "", "also export the labeled joined table to this xlsx path")
	flag.Parse()

	cfg, dcfg, err := config.LoadConfig(*configDir, "config.json", "dataconfig.json")
	if err != nil {
		log.Fatal("failed to load configuration:", err)
	}

	logger, err := storage.NewLogger(cfg.LogName)
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logger.Close()

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		log.Fatal("failed to create output dir:", err)
	}

	variant, err := processor.ParseJoinVariant(cfg.JoinVariant)
	if err != nil {
		log.Fatal("bad join_variant:", err)
	}

	opts := processor.DefaultOptions()
	opts.Variant = variant
	if cfg.DelayThresholdMin > 0 {
		opts.DelayThresholdMin = cfg.DelayThresholdMin
	}
	if len(dcfg.Predictors) > 0 {
		opts.Predictors = dcfg.Predictors
	}
	if len(dcfg.SummaryColumns) > 0 {
		opts.SummaryColumns = dcfg.SummaryColumns
	}

	run := func(workbookPath string) {
		start := time.Now()
		if err := runOnce(cfg, dcfg, opts, logger, workbookPath, *export, *mailReport); err != nil {
			logger.Error("analysis run failed: " + err.Error())
			return
		}
		logger.Info(fmt.Sprintf("analysis completed in %v", time.Since(start)))
		logger.CheckRotate(cfg.LogMaxSize)
	}

	run(*workbook)

	jobs := scheduledJobs(cfg)
	if !*watch && len(jobs) == 0 {
		return
	}

	if len(jobs) > 0 {
		c := cron.New()
		for _, job := range jobs {
			job := job
			var err error
			switch job.kind {
			case jobMailboxPoll:
				err = c.AddFunc(job.spec, func() {
					if path := refreshFromMailbox(cfg, logger); path != "" {
						run(path)
					}
				})
			default:
				err = c.AddFunc(job.spec, func() {
					logger.Info(fmt.Sprintf("scheduled run (%s)...", job.spec))
					run(*workbook)
				})
			}
			if err != nil {
				logger.Error(fmt.Sprintf("failed to schedule %s job: %v", job.kind, err))
				os.Exit(1)
			}
			logger.Info(fmt.Sprintf("%s job scheduled (%s)", job.kind, job.spec))
		}
		c.Start()
		defer c.Stop()
	}

	if *watch {
		monitor, err := filesource.NewWorkbookMonitor(cfg.DataDir)
		if err != nil {
			logger.Error("failed to watch data dir: " + err.Error())
			os.Exit(1)
		}
		defer monitor.Close()

		logger.Info("watching " + cfg.DataDir + " for dataset workbooks")
		if err := monitor.Watch(run); err != nil {
			logger.Error("watch failed: " + err.Error())
			os.Exit(1)
		}
		return
	}

	select {}
}

// scheduledJob is one recurring cron entry derived from the config.
type scheduledJob struct {
	kind string
	spec string
}

const (
	jobAnalysis    = "analysis"
	jobMailboxPoll = "mailbox poll"
)

// scheduledJobs derives the cron entries from the config: periodic
// re-analysis from schedule_interval, mailbox polling from
// email.check_interval. Polling needs mail credentials to be set.
func scheduledJobs(cfg *config.Config) []scheduledJob {
	var jobs []scheduledJob
	if d := time.Duration(cfg.ScheduleInterval); d > 0 {
		jobs = append(jobs, scheduledJob{kind: jobAnalysis, spec: fmt.Sprintf("@every %s", d)})
	}
	if d := time.Duration(cfg.Email.CheckInterval); d > 0 && cfg.Email.Server != "" && cfg.Email.Username != "" {
		jobs = append(jobs, scheduledJob{kind: jobMailboxPoll, spec: fmt.Sprintf("@every %s", d)})
	}
	return jobs
}

// runOnce loads the tables, runs the analysis, and renders the report.
func runOnce(cfg *config.Config, dcfg *config.DataConfig, opts processor.Options, logger *storage.Logger, workbookPath, exportPath string, mailReport bool) error {
	var (
		flights dataframe.DataFrame
		weather dataframe.DataFrame
		err     error
	)

	if workbookPath != "" {
		logger.Info("loading dataset workbook " + workbookPath)
		flights, weather, err = dataset.ReadWorkbook(workbookPath, cfg.FlightsSheet, cfg.WeatherSheet, dcfg.ColumnAliases)
	} else {
		logger.Info("loading bundled dataset")
		flights, weather, err = dataset.LoadBundled()
	}
	if err != nil {
		return err
	}

	analysis, err := processor.Run(flights, weather, opts, logger)
	if err != nil {
		return err
	}

	if exportPath != "" {
		if err := utils.SaveToExcel(analysis.Labeled, exportPath); err != nil {
			return fmt.Errorf("export labeled table: %w", err)
		}
		logger.Info("labeled table exported to " + exportPath)
	}

	path, err := report.NewRenderer(logger).Save(analysis, cfg.OutputDir)
	if err != nil {
		return err
	}

	if mailReport {
		if err := emailsource.SendReport(cfg, path); err != nil {
			// Delivery is best-effort; the workbook is already on disk.
			logger.Warning("report delivery failed: " + err.Error())
		} else {
			logger.Info("report mailed to configured recipients")
		}
	}

	return nil
}

// refreshFromMailbox checks for a dataset mail and saves its workbook
// attachment. Returns the saved path, or "" when there is nothing new
// or mail is not configured.
func refreshFromMailbox(cfg *config.Config, logger *storage.Logger) string {
	if cfg.Email.Server == "" || cfg.Email.Username == "" {
		return ""
	}

	mailClient := emailsource.NewEmailClient(cfg.Email.Server, cfg.Email.Username, cfg.Email.Password)
	newMail, err := emailsource.FetchLatestDatasetMail(mailClient, cfg.Email.TargetSubject, logger)
	if err != nil {
		logger.Error("mailbox check failed: " + err.Error())
		return ""
	}
	if newMail == nil {
		return ""
	}

	handler := emailsource.NewWorkbookHandler(cfg.Email.TargetSubject, cfg.DataDir)
	saved, err := handler.Handle(newMail)
	if err != nil {
		logger.Error(fmt.Sprintf("saving workbook from mail (UID %d) failed: %v", newMail.UID, err))
		return ""
	}
	if len(saved) == 0 {
		return ""
	}
	return saved[0]
}
