package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet sends a raw GET to the backend and prints the reply.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}

	r.logger.Info("GET", "url", r.api.BaseURL()+path)
	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return &services.RequestError{Kind: services.KindTransport, Path: path, Err: fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)}
	}
	return r.printReply(path, resp, !cmd.Bool("json"))
}

// APIPost sends a raw JSON POST to the backend and prints the reply.
//
// Replies from /generate, /harmonize and /reharmonize are checked like the TUI checks them,
// so "success": false fails the command with the server's error text.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}
	if !json.Valid([]byte(data)) {
		return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
	}

	r.logger.Info("POST", "url", r.api.BaseURL()+path, "bytes", len(data))
	resp, err := r.api.Post(ctx, path, []byte(data))
	if err != nil {
		return &services.RequestError{Kind: services.KindTransport, Path: path, Err: fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)}
	}

	if services.IsGenerationPath(path) {
		body, err := services.CheckGenerateResponse(path, resp)
		if err != nil {
			return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
		}
		r.logger.Debug("generated", "filename", body.Filename, "audio_url", body.AudioURL)
		return r.writeJSON(body, true)
	}
	return r.printReply(path, resp, true)
}

func (r *Runner) printReply(path string, resp *services.APIResponse, pretty bool) error {
	if !resp.OK() {
		reqErr := &services.RequestError{Kind: services.KindStatus, Path: path, StatusCode: resp.StatusCode, Err: shared.ErrHTTPStatus}
		var body services.GenerateResponse
		if resp.IsJSON && json.Unmarshal(resp.Body, &body) == nil {
			reqErr.Message = body.Error
		}
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, reqErr)
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}
	if _, err := fmt.Fprintln(r.output, string(resp.Body)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
