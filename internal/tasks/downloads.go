package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
	"golang.org/x/time/rate"
)

// Downloader fetches generated files from the backend.
type Downloader interface {
	Download(ctx context.Context, filename string, w io.Writer) (int64, error)
}

// DownloadOpts contains configuration for bulk downloads.
type DownloadOpts struct {
	OutputDir  string  // Base output directory (default: tunesmith_downloads_{epoch})
	NumWorkers int     // Concurrent workers (default: 3)
	RateLimit  float64 // Requests per second (default: 5)
}

// DownloadResult is the outcome of downloading a single file.
type DownloadResult struct {
	Prompt   string `json:"prompt"`
	Filename string `json:"filename"`
	Path     string `json:"path,omitempty"`
	Bytes    int64  `json:"bytes"`
	Success  bool   `json:"success"`
	Error    error  `json:"-"`
	Message  string `json:"error,omitempty"`
}

// BulkDownloadResult summarizes a bulk download.
type BulkDownloadResult struct {
	Total           int              `json:"total"`
	Succeeded       int              `json:"succeeded"`
	Failed          int              `json:"failed"`
	OutputDirectory string           `json:"output_directory"`
	ManifestPath    string           `json:"-"`
	Results         []DownloadResult `json:"results"`
}

type downloadJob struct {
	step     int
	favorite models.FavoriteEntry
}

// DownloadTrack saves a single generated file into dir and returns its path.
func DownloadTrack(ctx context.Context, client Downloader, filename, dir string) (string, int64, error) {
	if filename == "" {
		return "", 0, fmt.Errorf("%w: filename is required", shared.ErrMissingArgument)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(filename))
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, err := client.Download(ctx, filename, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", n, err
	}
	return path, n, nil
}

// BulkDownload downloads the files of favorites concurrently with rate limiting and progress tracking.
//
// Favorites sharing a filename are downloaded once. Individual failures are recorded in the result and do
// not stop the run. A manifest summarizing the run is written to the output directory.
func BulkDownload(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	client Downloader,
	favorites []models.FavoriteEntry,
	opts DownloadOpts,
) (*BulkDownloadResult, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: download client not initialized", shared.ErrMissingConfig)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("tunesmith_downloads_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	unique := make([]models.FavoriteEntry, 0, len(favorites))
	seen := make(map[string]bool, len(favorites))
	for _, fav := range favorites {
		if fav.Filename == "" || seen[fav.Filename] {
			continue
		}
		seen[fav.Filename] = true
		unique = append(unique, fav)
	}

	total := len(unique)
	result := &BulkDownloadResult{
		Total:           total,
		OutputDirectory: opts.OutputDir,
		Results:         make([]DownloadResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan downloadJob, total)
	results := make(chan DownloadResult, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go downloadWorker(ctx, &wg, client, jobs, results, opts.OutputDir)
	}

	go func() {
		defer close(jobs)
		SendProgress(prog, queueDownloadsUpdate(total))
		for i, fav := range unique {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			SendProgress(prog, downloadStartedUpdate(i+1, total, fav.Filename))
			jobs <- downloadJob{step: i + 1, favorite: fav}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.Succeeded++
			SendProgress(prog, downloadCompletedUpdate(completed, total, res))
		} else {
			result.Failed++
			SendProgress(prog, downloadFailedUpdate(completed, total, res))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("download interrupted: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "download_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("download completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	SendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// downloadWorker downloads files from the jobs channel.
func downloadWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	client Downloader,
	jobs <-chan downloadJob,
	results chan<- DownloadResult,
	dir string,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := DownloadResult{Prompt: job.favorite.Prompt, Filename: job.favorite.Filename}
		path, n, err := DownloadTrack(ctx, client, job.favorite.Filename, dir)
		res.Bytes = n
		if err != nil {
			res.Error = err
			res.Message = err.Error()
		} else {
			res.Path = path
			res.Success = true
		}
		results <- res
	}
}
