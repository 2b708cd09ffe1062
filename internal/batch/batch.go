package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/recordroom/vinyl-lister/internal/imagehost"
	"github.com/recordroom/vinyl-lister/internal/images"
	"github.com/recordroom/vinyl-lister/internal/models"
	"github.com/recordroom/vinyl-lister/internal/storage"
	"golang.org/x/sync/errgroup"
)

// FileStore is the folder and image storage the pipeline reads from.
type FileStore interface {
	ListPendingSubfolders(ctx context.Context, parentID string) ([]models.Folder, error)
	ListProcessedSubfolders(ctx context.Context, parentID string) ([]models.Folder, error)
	ListImages(ctx context.Context, folderID string) ([]models.FileEntry, error)
	FetchImageBytes(ctx context.Context, fileID string) ([]byte, error)
}

// ConfigSource supplies the operator-maintained pick lists.
type ConfigSource interface {
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetShippingOptions(ctx context.Context) ([]string, error)
}

// Analyzer identifies a release from photos.
type Analyzer interface {
	Analyze(ctx context.Context, images [][]byte, excludeHint string) (*models.AnalysisResult, error)
}

type Options struct {
	// PublicBaseURL prefixes the image proxy path, e.g. https://host/image/<id>.
	PublicBaseURL string
	// MaxConcurrent bounds how many records of one session are in flight.
	// Zero means 1, which processes records strictly in listing order.
	MaxConcurrent int
	// AnalysisImages is how many photos are sent to the analyzer. Zero means 3.
	AnalysisImages int
	Now            func() time.Time
	NewID          func() string
}

// Processor runs batch sessions. Background work outlives the submitting
// request; Wait blocks until all of it has finished.
type Processor struct {
	store    *storage.SessionStore
	files    FileStore
	config   ConfigSource
	analyzer Analyzer
	host     imagehost.Host
	opts     Options
	wg       sync.WaitGroup
}

// New creates a Processor. host may be nil, in which case records keep the
// image proxy URLs.
func New(store *storage.SessionStore, files FileStore, config ConfigSource, analyzer Analyzer, host imagehost.Host, opts Options) *Processor {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.AnalysisImages <= 0 {
		opts.AnalysisImages = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &Processor{
		store:    store,
		files:    files,
		config:   config,
		analyzer: analyzer,
		host:     host,
		opts:     opts,
	}
}

// Submit starts a session for the parent folder named by parentRef (a
// folder URL or bare id) and returns its id without waiting for records.
// A config failure still yields a session, in the error state.
func (p *Processor) Submit(ctx context.Context, parentRef, defaultCategory string) (string, error) {
	parentID, err := ParseFolderID(parentRef)
	if err != nil {
		return "", err
	}

	session := &models.Session{
		ID:              p.opts.NewID(),
		Status:          models.SessionProcessing,
		ParentFolderID:  parentID,
		DefaultCategory: strings.TrimSpace(defaultCategory),
		Records:         []*models.Record{},
		CreatedAt:       p.opts.Now(),
	}

	categories, shipping, err := p.fetchConfig(ctx)
	if err != nil {
		slog.Error("Failed to fetch listing config", "session_id", session.ID, "error", err)
		session.Status = models.SessionError
		session.Error = err.Error()
		if err := p.store.Create(session); err != nil {
			return "", err
		}
		return session.ID, nil
	}
	session.Categories = categories
	session.ShippingOptions = shipping

	if err := p.store.Create(session); err != nil {
		return "", err
	}
	slog.Info("Session created", "session_id", session.ID, "parent_folder_id", parentID)

	bg := context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(bg, session.ID, parentID)
	}()
	return session.ID, nil
}

// Wait blocks until every background run and re-analysis has returned.
func (p *Processor) Wait() {
	p.wg.Wait()
}

func (p *Processor) fetchConfig(ctx context.Context) ([]models.Category, []string, error) {
	var categories []models.Category
	var shipping []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = p.config.GetCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		shipping, err = p.config.GetShippingOptions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", models.ErrConfigFetchFailed, err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	if shipping == nil {
		shipping = []string{}
	}
	return categories, shipping, nil
}

func (p *Processor) run(ctx context.Context, sessionID, parentID string) {
	start := time.Now()

	var pending, processed []models.Folder
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pending, err = p.files.ListPendingSubfolders(gctx, parentID)
		return err
	})
	g.Go(func() error {
		var err error
		processed, err = p.files.ListProcessedSubfolders(gctx, parentID)
		return err
	})
	if err := g.Wait(); err != nil {
		p.failSession(sessionID, fmt.Errorf("failed to list folders: %w", err))
		return
	}

	date := p.opts.Now()
	records := make([]*models.Record, len(pending))
	for i, f := range pending {
		records[i] = &models.Record{
			ID:          p.opts.NewID(),
			FolderID:    f.ID,
			FolderName:  f.Name,
			CustomLabel: Label(date, len(processed)+i+1),
			Status:      models.RecordPending,
		}
	}
	err := p.store.Update(sessionID, func(s *models.Session) error {
		s.Records = records
		return nil
	})
	if err != nil {
		slog.Error("Session vanished before records were assigned", "session_id", sessionID, "error", err)
		return
	}
	slog.Info("Processing records", "session_id", sessionID, "pending", len(pending), "already_processed", len(processed))

	// Per-record failures are recorded on the record, never returned, so
	// one bad folder cannot cancel the others.
	rg := new(errgroup.Group)
	rg.SetLimit(p.opts.MaxConcurrent)
	for _, rec := range records {
		recordID, folderID, label := rec.ID, rec.FolderID, rec.CustomLabel
		rg.Go(func() error {
			p.processRecord(ctx, sessionID, recordID, folderID, label)
			return nil
		})
	}
	_ = rg.Wait()

	_ = p.store.Update(sessionID, func(s *models.Session) error {
		s.Status = models.SessionCompleted
		return nil
	})
	slog.Info("Session completed", "session_id", sessionID, "records", len(records), "duration", time.Since(start))
}

func (p *Processor) failSession(sessionID string, err error) {
	slog.Error("Session failed", "session_id", sessionID, "error", err)
	_ = p.store.Update(sessionID, func(s *models.Session) error {
		s.Status = models.SessionError
		s.Error = err.Error()
		return nil
	})
}

func (p *Processor) processRecord(ctx context.Context, sessionID, recordID, folderID, label string) {
	defer func() {
		if r := recover(); r != nil {
			p.failRecord(sessionID, recordID, fmt.Errorf("panic while processing record: %v", r))
		}
	}()

	ai, entries, err := p.AnalyzeFolder(ctx, folderID, "")
	if err != nil {
		p.failRecord(sessionID, recordID, err)
		return
	}

	refs, err := p.attachImages(ctx, entries, imagehost.PictureName(ai, label))
	if err != nil {
		p.failRecord(sessionID, recordID, err)
		return
	}

	err = p.store.UpdateRecord(sessionID, recordID, func(r *models.Record) error {
		if err := r.Transition(models.RecordSuccess); err != nil {
			return err
		}
		r.Images = refs
		r.AIData = ai
		r.Error = ""
		return nil
	})
	if err != nil {
		slog.Error("Failed to store record result", "session_id", sessionID, "record_id", recordID, "error", err)
		return
	}
	slog.Info("Record processed", "session_id", sessionID, "record_id", recordID, "custom_label", label, "title", ai.Title)
}

func (p *Processor) failRecord(sessionID, recordID string, cause error) {
	slog.Warn("Record failed", "session_id", sessionID, "record_id", recordID, "error", cause)
	err := p.store.UpdateRecord(sessionID, recordID, func(r *models.Record) error {
		if err := r.Transition(models.RecordError); err != nil {
			return err
		}
		r.Error = cause.Error()
		return nil
	})
	if err != nil {
		slog.Error("Failed to store record error", "session_id", sessionID, "record_id", recordID, "error", err)
	}
}

// AnalyzeFolder lists a folder's photos, downloads the analysis subset and
// runs the analyzer. It returns the full listing in sort order alongside the
// result. Download failures of single photos are logged and skipped.
func (p *Processor) AnalyzeFolder(ctx context.Context, folderID, excludeHint string) (*models.AnalysisResult, []models.FileEntry, error) {
	entries, err := p.files.ListImages(ctx, folderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list images: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("%w: folder %s has no images", models.ErrNoImages, folderID)
	}
	images.SortEntries(entries)

	var buffers [][]byte
	for _, e := range images.SelectForAnalysis(entries, p.opts.AnalysisImages) {
		data, err := p.files.FetchImageBytes(ctx, e.ID)
		if err != nil {
			slog.Warn("Image download failed", "folder_id", folderID, "file_id", e.ID, "name", e.Name, "error", err)
			continue
		}
		buffers = append(buffers, data)
	}
	if len(buffers) == 0 {
		return nil, nil, fmt.Errorf("%w: no images downloaded from folder %s", models.ErrNoImages, folderID)
	}

	ai, err := p.analyzer.Analyze(ctx, buffers, excludeHint)
	if err != nil {
		if !errors.Is(err, models.ErrAnalysisFailed) {
			err = fmt.Errorf("%w: %v", models.ErrAnalysisFailed, err)
		}
		return nil, nil, err
	}
	return ai, entries, nil
}

// attachImages builds the record's image list in sort order, hosting each
// photo when a host is configured.
func (p *Processor) attachImages(ctx context.Context, entries []models.FileEntry, name string) ([]models.ImageRef, error) {
	refs := make([]models.ImageRef, 0, len(entries))
	for _, e := range entries {
		ref := models.ImageRef{ID: e.ID, Name: e.Name, URL: p.ImageURL(e.ID)}
		if p.host != nil {
			hosted, err := p.hostImage(ctx, e.ID, ref.URL, name)
			if err != nil {
				if !errors.Is(err, models.ErrHostingFailed) {
					err = fmt.Errorf("%w: %v", models.ErrHostingFailed, err)
				}
				return nil, fmt.Errorf("%s: %w", e.Name, err)
			}
			ref.URL = hosted
		}
		refs = append(refs, ref)
	}
	images.Sort(refs)
	return refs, nil
}

func (p *Processor) hostImage(ctx context.Context, fileID, proxyURL, name string) (string, error) {
	opts := imagehost.Options{PictureName: name}
	if strings.HasPrefix(proxyURL, "http://") || strings.HasPrefix(proxyURL, "https://") {
		return p.host.HostFromURL(ctx, proxyURL, opts)
	}
	data, err := p.files.FetchImageBytes(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrHostingFailed, err)
	}
	return p.host.HostFromBytes(ctx, data, opts)
}

// ImageURL is the proxy URL this server serves a file under.
func (p *Processor) ImageURL(fileID string) string {
	return p.opts.PublicBaseURL + "/image/" + fileID
}
