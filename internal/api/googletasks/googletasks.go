// Package googletasks keeps tasks in a Google Tasks list.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/task"
)

// Ensure Service implements api.Service at compile time.
var _ api.Service = (*Service)(nil)

const (
	// DefaultListID is the special ID for the user's default list.
	DefaultListID = "@default"

	// OAuthClientFile and TokenFile are the file names inside a config dir.
	OAuthClientFile = "oauth_client.json"
	TokenFile       = "token.json"

	apiTimeout = 5 * time.Second
	pageSize   = 100
	tasksScope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Options locate the OAuth material and pick the list to use.
type Options struct {
	ClientFile string
	TokenFile  string
	ListID     string
}

// OptionsFromDir fills the file paths from a gtask style config dir.
func OptionsFromDir(dir, listID string) Options {
	return Options{
		ClientFile: filepath.Join(dir, OAuthClientFile),
		TokenFile:  filepath.Join(dir, TokenFile),
		ListID:     listID,
	}
}

// Service implements api.Service on one Google Tasks list.
type Service struct {
	svc    *tasks.Service
	listID string
	ids    *idMap
}

// New builds a Service from an OAuth client file and a stored token.
func New(ctx context.Context, opts Options) (*Service, error) {
	clientJSON, err := os.ReadFile(opts.ClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}

	tokenData, err := os.ReadFile(opts.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))
	return NewWithHTTPClient(ctx, httpClient, opts.ListID)
}

// NewWithHTTPClient builds a Service on an already authorized client.
// Extra client options such as option.WithEndpoint are passed through.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, listID string, extra ...option.ClientOption) (*Service, error) {
	clientOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, extra...)
	svc, err := tasks.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create tasks service: %w", err)
	}
	if listID == "" {
		listID = DefaultListID
	}
	return &Service{svc: svc, listID: listID, ids: newIDMap()}, nil
}

// List fetches every task in the list, completed ones included, newest
// first.
func (s *Service) List(ctx context.Context) ([]task.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	var items []*tasks.Task
	err := s.svc.Tasks.List(s.listID).
		MaxResults(pageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			items = append(items, resp.Items...)
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}

	// Google lists new tasks at the top, so unseen tasks are numbered
	// bottom-up to keep newer tasks on higher ids.
	out := make([]task.Task, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out[i] = s.fromRemote(items[i])
	}
	slices.SortStableFunc(out, func(a, b task.Task) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

// Create inserts an open task at the top of the list.
func (s *Service) Create(ctx context.Context, draft task.Draft) (task.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	created, err := s.svc.Tasks.Insert(s.listID, &tasks.Task{
		Title:  draft.Title,
		Notes:  draft.Description,
		Status: statusNeedsAction,
	}).Context(ctx).Do()
	if err != nil {
		return task.Task{}, wrapError(err)
	}
	t := s.fromRemote(created)
	log.Printf("googletasks: created %s as %d", created.Id, t.ID)
	return t, nil
}

// Update replaces the remote task mapped to t.ID. Unknown ids succeed
// without a call.
func (s *Service) Update(ctx context.Context, t task.Task) (task.Task, error) {
	remoteID, ok := s.ids.remote(t.ID)
	if !ok {
		return t, nil
	}
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	if _, err := s.svc.Tasks.Update(s.listID, remoteID, toRemote(remoteID, t)).Context(ctx).Do(); err != nil {
		return task.Task{}, wrapError(err)
	}
	return t, nil
}

// Delete removes the remote task mapped to id. Unknown ids succeed without
// a call.
func (s *Service) Delete(ctx context.Context, id int64) (int64, error) {
	remoteID, ok := s.ids.remote(id)
	if !ok {
		return id, nil
	}
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	if err := s.svc.Tasks.Delete(s.listID, remoteID).Context(ctx).Do(); err != nil {
		return 0, wrapError(err)
	}
	s.ids.forget(id)
	return id, nil
}

func (s *Service) fromRemote(r *tasks.Task) task.Task {
	return task.Task{
		ID:          s.ids.local(r.Id),
		Title:       r.Title,
		Description: r.Notes,
		Completed:   r.Status == statusCompleted,
	}
}

func toRemote(remoteID string, t task.Task) *tasks.Task {
	r := &tasks.Task{
		Id:     remoteID,
		Title:  t.Title,
		Notes:  t.Description,
		Status: statusNeedsAction,
	}
	if t.Completed {
		r.Status = statusCompleted
	} else {
		// Clearing completion needs an explicit null.
		r.NullFields = []string{"Completed"}
	}
	return r
}

// wrapError maps rate limits and server errors to api.ErrTransient.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", api.ErrTransient)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500:
			return fmt.Errorf("%w: google tasks status %d", api.ErrTransient, gerr.Code)
		case gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden:
			return fmt.Errorf("google tasks: token expired or revoked: %w", err)
		}
	}
	return fmt.Errorf("google tasks: %w", err)
}
