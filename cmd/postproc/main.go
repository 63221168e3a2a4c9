package main

import (
	"context"
	"fmt"
	"os"

	"go-fmri-pipeline/internal/fsl"
	"go-fmri-pipeline/internal/model"
	"go-fmri-pipeline/internal/pipeline"
	"go-fmri-pipeline/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	jobFile   string
	dbPath    string
	outputDir string
	workDir   string
)

var rootCmd = &cobra.Command{
	Use:   "postproc",
	Short: "Post-processing pipelines for fMRIprep outputs",
	Long: `postproc runs an ordered pipeline of post-processing steps (spatial
smoothing, temporal/highpass filtering, timecourse normalization) over the
preprocessed bold files of a batch of subjects.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a post-processing job from a YAML job file",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(jobFile)
		if err != nil {
			return fmt.Errorf("read job file: %w", err)
		}
		var job model.JobSpec
		if err := yaml.Unmarshal(data, &job); err != nil {
			return fmt.Errorf("parse job file: %w", err)
		}
		if outputDir != "" {
			job.OutputDir = outputDir
		}
		if workDir != "" {
			job.WorkDir = workDir
		}
		if job.FMRIPrepDir == "" {
			return fmt.Errorf("job file must set fmriprepDir")
		}

		jobID := uuid.New().String()

		var rec pipeline.Recorder = pipeline.LogRecorder{}
		if dbPath != "" {
			if err := store.InitDB(dbPath); err != nil {
				return fmt.Errorf("open job store: %w", err)
			}
			defer store.Close()
			if err := store.SaveJob(jobID, job); err != nil {
				return fmt.Errorf("save job: %w", err)
			}
			rec = store.Recorder{}
		}

		runner := fsl.ExecRunner{}
		tools := &fsl.Tools{Runner: runner, WorkDir: job.WorkDir}
		driver := pipeline.NewDriver(pipeline.Stages{
			Smoother:   tools,
			Filter:     tools,
			Normalizer: tools,
			Probe:      &fsl.Probe{Runner: runner},
			Exists: func(path string) bool {
				_, err := os.Stat(path)
				return err == nil
			},
		}, rec)

		return driver.Run(context.Background(), jobID, job)
	},
}

func init() {
	runCmd.Flags().StringVarP(&jobFile, "job", "j", "job.yaml", "path to the YAML job file")
	runCmd.Flags().StringVar(&dbPath, "db", "", "optional sqlite job store path")
	runCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "override the job's output directory")
	runCmd.Flags().StringVarP(&workDir, "work-dir", "w", "", "override the job's working directory")
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
