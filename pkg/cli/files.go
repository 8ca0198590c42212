package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"scrape-dash-go/pkg/cli/format"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newFilesCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List, download and delete generated CSV files",
	}

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <filename>",
		Short: "Delete one CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.DeleteFile(cmd.Context(), args[0], yes)
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	var yesAll bool
	deleteAllCmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every CSV file not being written by a running job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.DeleteAllFiles(cmd.Context(), yesAll)
		},
	}
	deleteAllCmd.Flags().BoolVarP(&yesAll, "yes", "y", false, "Skip the confirmation prompt")

	var output string
	downloadCmd := &cobra.Command{
		Use:   "download <filename>",
		Short: "Download one CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.DownloadFile(cmd.Context(), args[0], output)
		},
	}
	downloadCmd.Flags().StringVarP(&output, "output", "o", "", "Destination file or directory, or - for stdout (default: the file name)")

	var (
		allOutput string
		merged    bool
	)
	downloadAllCmd := &cobra.Command{
		Use:   "download-all",
		Short: "Download every CSV file as a zip, or merged into one CSV with --merged",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.DownloadAll(cmd.Context(), merged, allOutput)
		},
	}
	downloadAllCmd.Flags().StringVarP(&allOutput, "output", "o", "", "Destination path, or - for stdout")
	downloadAllCmd.Flags().BoolVar(&merged, "merged", false, "Merge all CSV files into one instead of zipping them")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List generated CSV files, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.ListFiles(cmd.Context())
			},
		},
		deleteCmd,
		deleteAllCmd,
		downloadCmd,
		downloadAllCmd,
	)
	return cmd
}

// ListFiles prints the generated files as a table.
func (a *App) ListFiles(ctx context.Context) error {
	client, err := a.getClient()
	if err != nil {
		return err
	}
	files, err := client.ListFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	format.WriteTo(a.out, format.FilesTable(files, a.now()))
	return nil
}

// DeleteFile removes one file after confirmation.
func (a *App) DeleteFile(ctx context.Context, filename string, yes bool) error {
	ok, err := a.confirm(fmt.Sprintf("Are you sure you want to delete %s?", filename), yes)
	if err != nil || !ok {
		fmt.Fprintln(a.out, "Aborted")
		return err
	}

	client, err := a.getClient()
	if err != nil {
		return err
	}
	if err := client.DeleteFile(ctx, filename); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	a.log.Info("file deleted", zap.String("filename", filename))
	fmt.Fprintf(a.out, "Deleted %s\n", filename)
	return nil
}

// DeleteAllFiles removes every finished CSV file after confirmation.
func (a *App) DeleteAllFiles(ctx context.Context, yes bool) error {
	ok, err := a.confirm("Are you sure you want to delete ALL CSV files? This cannot be undone.", yes)
	if err != nil || !ok {
		fmt.Fprintln(a.out, "Aborted")
		return err
	}

	client, err := a.getClient()
	if err != nil {
		return err
	}
	ack, err := client.DeleteAllFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete all CSV files: %w", err)
	}
	a.log.Info("files deleted", zap.Strings("filenames", ack.DeletedFiles))
	fmt.Fprintln(a.out, ack.Message)
	return nil
}

// DownloadFile saves one file to output, its own name by default. An
// existing directory as output keeps the file's name inside it.
func (a *App) DownloadFile(ctx context.Context, filename, output string) error {
	client, err := a.getClient()
	if err != nil {
		return err
	}
	switch {
	case output == "":
		output = filepath.Base(filename)
	case output != "-":
		if info, err := os.Stat(output); err == nil && info.IsDir() {
			output = filepath.Join(output, filepath.Base(filename))
		}
	}
	return a.saveTo(output, func(w io.Writer) (int64, error) {
		return client.DownloadFile(ctx, filename, w)
	})
}

// DownloadAll saves the zip of all files, or the merged CSV.
func (a *App) DownloadAll(ctx context.Context, merged bool, output string) error {
	client, err := a.getClient()
	if err != nil {
		return err
	}
	if merged {
		if output == "" {
			output = "merged_results.csv"
		}
		return a.saveTo(output, func(w io.Writer) (int64, error) {
			return client.DownloadMergedCSV(ctx, w)
		})
	}
	if output == "" {
		output = "all_results.zip"
	}
	return a.saveTo(output, func(w io.Writer) (int64, error) {
		return client.DownloadAllZip(ctx, w)
	})
}

// saveTo streams fetch into path. "-" writes to stdout; a failed download
// leaves no partial file behind.
func (a *App) saveTo(path string, fetch func(io.Writer) (int64, error)) error {
	if path == "-" {
		_, err := fetch(a.out)
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := fetch(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("download failed: %w", err)
	}

	a.log.Info("download saved", zap.String("path", path), zap.Int64("bytes", n))
	fmt.Fprintf(a.errOut, "Saved %s (%s)\n", path, format.FileSize(n))
	return nil
}

func newHealthCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the scrape backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.CheckHealth(cmd.Context())
		},
	}
}

// CheckHealth reports backend reachability.
func (a *App) CheckHealth(ctx context.Context) error {
	client, err := a.getClient()
	if err != nil {
		return err
	}
	ok, err := client.CheckHealth(ctx)
	if err != nil {
		return fmt.Errorf("backend unavailable at %s: %w", client.BaseURL(), err)
	}
	if !ok {
		return fmt.Errorf("backend at %s reported unhealthy", client.BaseURL())
	}
	fmt.Fprintf(a.out, "Backend healthy at %s\n", client.BaseURL())
	return nil
}
