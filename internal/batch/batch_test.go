package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/recordroom/vinyl-lister/internal/imagehost"
	"github.com/recordroom/vinyl-lister/internal/models"
	"github.com/recordroom/vinyl-lister/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parentID = "parentFolder0001"

type fakeFiles struct {
	mu        sync.Mutex
	pending   []models.Folder
	processed []models.Folder
	listErr   error
	images    map[string][]models.FileEntry
	badFiles  map[string]bool
	fetched   []string
}

func (f *fakeFiles) ListPendingSubfolders(ctx context.Context, parent string) ([]models.Folder, error) {
	return f.pending, f.listErr
}

func (f *fakeFiles) ListProcessedSubfolders(ctx context.Context, parent string) ([]models.Folder, error) {
	return f.processed, nil
}

func (f *fakeFiles) ListImages(ctx context.Context, folderID string) ([]models.FileEntry, error) {
	return append([]models.FileEntry(nil), f.images[folderID]...), nil
}

func (f *fakeFiles) FetchImageBytes(ctx context.Context, fileID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, fileID)
	if f.badFiles[fileID] {
		return nil, errors.New("download failed")
	}
	return []byte("img-" + fileID), nil
}

type fakeConfig struct{ err error }

func (c fakeConfig) GetCategories(ctx context.Context) ([]models.Category, error) {
	return []models.Category{{Name: "LP", Code: "176985"}}, c.err
}

func (c fakeConfig) GetShippingOptions(ctx context.Context) ([]string, error) {
	return []string{"1", "2"}, nil
}

type fakeAnalyzer struct {
	mu       sync.Mutex
	calls    int
	hints    []string
	buffers  [][][]byte
	err      error
	inflight int
	peak     int
	delay    time.Duration
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, imgs [][]byte, hint string) (*models.AnalysisResult, error) {
	a.mu.Lock()
	a.calls++
	n := a.calls
	a.hints = append(a.hints, hint)
	a.buffers = append(a.buffers, imgs)
	a.inflight++
	if a.inflight > a.peak {
		a.peak = a.inflight
	}
	a.mu.Unlock()

	time.Sleep(a.delay)

	a.mu.Lock()
	a.inflight--
	a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	return &models.AnalysisResult{
		Title:      fmt.Sprintf("Album %d", n),
		Artist:     "Artist",
		DiscogsURL: fmt.Sprintf("https://www.discogs.com/release/%d", n),
	}, nil
}

type fakeHost struct {
	mu      sync.Mutex
	fromURL []string
	err     error
}

func (h *fakeHost) HostFromURL(ctx context.Context, url string, opts imagehost.Options) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return "", h.err
	}
	h.fromURL = append(h.fromURL, url)
	return "https://i.ebayimg.com/" + url[len(url)-2:], nil
}

func (h *fakeHost) HostFromBytes(ctx context.Context, data []byte, opts imagehost.Options) (string, error) {
	return "https://i.ebayimg.com/bytes", h.err
}

func entries(names ...string) []models.FileEntry {
	out := make([]models.FileEntry, len(names))
	for i, n := range names {
		out[i] = models.FileEntry{ID: n[:2], Name: n}
	}
	return out
}

var fixedNow = func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) }

func newProcessor(files *fakeFiles, cfg fakeConfig, an *fakeAnalyzer, host imagehost.Host, opts Options) (*Processor, *storage.SessionStore) {
	store := storage.New()
	opts.Now = fixedNow
	return New(store, files, cfg, an, host, opts), store
}

func submitAndWait(t *testing.T, p *Processor, store *storage.SessionStore) *models.Session {
	t.Helper()
	id, err := p.Submit(context.Background(), "https://drive.google.com/drive/folders/"+parentID+"?usp=sharing", "176985")
	require.NoError(t, err)
	p.Wait()
	s, ok := store.Get(id)
	require.True(t, ok)
	return s
}

func TestSubmit_MixedFolders(t *testing.T) {
	files := &fakeFiles{
		pending: []models.Folder{{ID: "f1", Name: "one"}, {ID: "f2", Name: "empty"}, {ID: "f3", Name: "three"}},
		processed: []models.Folder{
			{ID: "p1"}, {ID: "p2"}, {ID: "p3"}, {ID: "p4"}, {ID: "p5"}, {ID: "p6"}, {ID: "p7"},
		},
		images: map[string][]models.FileEntry{
			"f1": entries("X1_other.jpg", "R1_vinyl.jpg", "J1_front.jpg", "M1_label.jpg"),
			"f3": entries("a1.jpg"),
		},
	}
	an := &fakeAnalyzer{}
	p, store := newProcessor(files, fakeConfig{}, an, nil, Options{PublicBaseURL: "https://lister.example/"})

	s := submitAndWait(t, p, store)

	assert.Equal(t, models.SessionCompleted, s.Status)
	assert.Equal(t, parentID, s.ParentFolderID)
	assert.Equal(t, []string{"1", "2"}, s.ShippingOptions)
	require.Len(t, s.Records, 3)

	labels := []string{s.Records[0].CustomLabel, s.Records[1].CustomLabel, s.Records[2].CustomLabel}
	assert.Equal(t, []string{"R240315_0008", "R240315_0009", "R240315_0010"}, labels)

	ok := s.Records[0]
	assert.Equal(t, models.RecordSuccess, ok.Status)
	require.NotNil(t, ok.AIData)
	var names []string
	for _, img := range ok.Images {
		names = append(names, img.Name)
	}
	assert.Equal(t, []string{"M1_label.jpg", "J1_front.jpg", "R1_vinyl.jpg", "X1_other.jpg"}, names)
	assert.Equal(t, "https://lister.example/image/M1", ok.Images[0].URL)

	empty := s.Records[1]
	assert.Equal(t, models.RecordError, empty.Status)
	assert.Contains(t, empty.Error, models.ErrNoImages.Error())
	assert.Nil(t, empty.AIData)
	assert.Empty(t, empty.Images)

	assert.Equal(t, models.RecordSuccess, s.Records[2].Status)

	// Only J1 and R1 of folder f1 were downloaded for analysis.
	assert.Equal(t, [][]byte{[]byte("img-J1"), []byte("img-R1")}, an.buffers[0])
}

func TestSubmit_InvalidInput(t *testing.T) {
	p, store := newProcessor(&fakeFiles{}, fakeConfig{}, &fakeAnalyzer{}, nil, Options{})

	for _, ref := range []string{"", "   ", "https://drive.google.com/drive/folders/", "not a folder"} {
		_, err := p.Submit(context.Background(), ref, "")
		assert.True(t, errors.Is(err, models.ErrInvalidInput), "ref %q", ref)
	}
	assert.Empty(t, store.GetAll())
}

func TestSubmit_ConfigFailureFailsSession(t *testing.T) {
	files := &fakeFiles{pending: []models.Folder{{ID: "f1"}}}
	p, store := newProcessor(files, fakeConfig{err: errors.New("sheet unavailable")}, &fakeAnalyzer{}, nil, Options{})

	id, err := p.Submit(context.Background(), parentID, "")
	require.NoError(t, err)

	s, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, models.SessionError, s.Status)
	assert.Contains(t, s.Error, "sheet unavailable")
	assert.Empty(t, s.Records)

	p.Wait()
	s, _ = store.Get(id)
	assert.Empty(t, s.Records, "no background work after a config failure")
}

func TestSubmit_ListingFailureFailsSession(t *testing.T) {
	files := &fakeFiles{listErr: errors.New("drive down")}
	p, store := newProcessor(files, fakeConfig{}, &fakeAnalyzer{}, nil, Options{})

	s := submitAndWait(t, p, store)
	assert.Equal(t, models.SessionError, s.Status)
	assert.Contains(t, s.Error, "drive down")
	assert.Empty(t, s.Records)
}

func TestProcess_DownloadFailures(t *testing.T) {
	files := &fakeFiles{
		pending: []models.Folder{{ID: "f1"}, {ID: "f2"}},
		images: map[string][]models.FileEntry{
			"f1": entries("J1_a.jpg", "J2_b.jpg"),
			"f2": entries("c1.jpg"),
		},
		badFiles: map[string]bool{"J1": true, "c1": true},
	}
	an := &fakeAnalyzer{}
	p, store := newProcessor(files, fakeConfig{}, an, nil, Options{})

	s := submitAndWait(t, p, store)
	assert.Equal(t, models.RecordSuccess, s.Records[0].Status, "one surviving download is enough")
	assert.Equal(t, models.RecordError, s.Records[1].Status)
	assert.Contains(t, s.Records[1].Error, "no images downloaded")
	assert.Equal(t, 1, an.calls)
}

func TestProcess_AnalysisFailureIsolated(t *testing.T) {
	files := &fakeFiles{
		pending: []models.Folder{{ID: "f1"}, {ID: "f2"}},
		images: map[string][]models.FileEntry{
			"f1": entries("J1_a.jpg"),
			"f2": entries("J1_b.jpg"),
		},
	}
	an := &fakeAnalyzer{err: errors.New("model overloaded")}
	p, store := newProcessor(files, fakeConfig{}, an, nil, Options{})

	s := submitAndWait(t, p, store)
	assert.Equal(t, models.SessionCompleted, s.Status)
	for _, r := range s.Records {
		assert.Equal(t, models.RecordError, r.Status)
		assert.Contains(t, r.Error, "model overloaded")
		assert.Contains(t, r.Error, models.ErrAnalysisFailed.Error())
		assert.Nil(t, r.AIData)
	}
	assert.Equal(t, 2, an.calls)
}

func TestProcess_HostsImages(t *testing.T) {
	files := &fakeFiles{
		pending: []models.Folder{{ID: "f1"}},
		images:  map[string][]models.FileEntry{"f1": entries("R1_b.jpg", "J1_a.jpg")},
	}
	host := &fakeHost{}
	p, store := newProcessor(files, fakeConfig{}, &fakeAnalyzer{}, host, Options{PublicBaseURL: "https://lister.example"})

	s := submitAndWait(t, p, store)
	rec := s.Records[0]
	require.Equal(t, models.RecordSuccess, rec.Status)
	assert.Equal(t, "https://i.ebayimg.com/J1", rec.Images[0].URL)
	assert.Equal(t, "https://i.ebayimg.com/R1", rec.Images[1].URL)
	assert.ElementsMatch(t, []string{"https://lister.example/image/R1", "https://lister.example/image/J1"}, host.fromURL)
}

func TestProcess_HostingFailure(t *testing.T) {
	files := &fakeFiles{
		pending: []models.Folder{{ID: "f1"}},
		images:  map[string][]models.FileEntry{"f1": entries("J1_a.jpg")},
	}
	host := &fakeHost{err: errors.New("token expired")}
	p, store := newProcessor(files, fakeConfig{}, &fakeAnalyzer{}, host, Options{})

	s := submitAndWait(t, p, store)
	rec := s.Records[0]
	assert.Equal(t, models.RecordError, rec.Status)
	assert.Contains(t, rec.Error, models.ErrHostingFailed.Error())
	assert.Nil(t, rec.AIData)
}

func TestProcess_SequentialByDefault(t *testing.T) {
	files := &fakeFiles{images: map[string][]models.FileEntry{}}
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("f%d", i)
		files.pending = append(files.pending, models.Folder{ID: id})
		files.images[id] = entries("J1_x.jpg")
	}

	an := &fakeAnalyzer{delay: 5 * time.Millisecond}
	p, store := newProcessor(files, fakeConfig{}, an, nil, Options{})
	submitAndWait(t, p, store)
	assert.Equal(t, 1, an.peak)

	an = &fakeAnalyzer{delay: 20 * time.Millisecond}
	p, store = newProcessor(files, fakeConfig{}, an, nil, Options{MaxConcurrent: 4})
	s := submitAndWait(t, p, store)
	assert.LessOrEqual(t, an.peak, 4)
	for _, r := range s.Records {
		assert.Equal(t, models.RecordSuccess, r.Status)
	}
}

func TestReanalyze_PassesPreviousIdentification(t *testing.T) {
	files := &fakeFiles{
		pending: []models.Folder{{ID: "f1"}},
		images:  map[string][]models.FileEntry{"f1": entries("J1_a.jpg")},
	}
	an := &fakeAnalyzer{}
	p, store := newProcessor(files, fakeConfig{}, an, nil, Options{})
	s := submitAndWait(t, p, store)
	rid := s.Records[0].ID

	first, err := p.Reanalyze(context.Background(), s.ID, rid)
	require.NoError(t, err)
	second, err := p.Reanalyze(context.Background(), s.ID, rid)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "https://www.discogs.com/release/1", first.DiscogsURL}, an.hints)
	assert.Equal(t, "https://www.discogs.com/release/3", second.DiscogsURL)

	got, _ := store.Get(s.ID)
	assert.Equal(t, models.RecordSuccess, got.Records[0].Status)
	assert.Equal(t, second.DiscogsURL, got.Records[0].AIData.DiscogsURL)
}

func TestReanalyze_RecoversErrorRecord(t *testing.T) {
	files := &fakeFiles{
		pending: []models.Folder{{ID: "f1"}},
		images:  map[string][]models.FileEntry{"f1": entries("J1_a.jpg")},
	}
	an := &fakeAnalyzer{err: errors.New("timeout")}
	p, store := newProcessor(files, fakeConfig{}, an, nil, Options{PublicBaseURL: "https://lister.example"})
	s := submitAndWait(t, p, store)
	require.Equal(t, models.RecordError, s.Records[0].Status)

	an.mu.Lock()
	an.err = nil
	an.mu.Unlock()

	ai, err := p.Reanalyze(context.Background(), s.ID, s.Records[0].ID)
	require.NoError(t, err)
	assert.NotEmpty(t, ai.Title)

	got, _ := store.Get(s.ID)
	rec := got.Records[0]
	assert.Equal(t, models.RecordSuccess, rec.Status)
	assert.Empty(t, rec.Error)
	require.Len(t, rec.Images, 1)
	assert.Equal(t, "https://lister.example/image/J1", rec.Images[0].URL)
}

func TestReanalyze_FailureSetsError(t *testing.T) {
	files := &fakeFiles{
		pending: []models.Folder{{ID: "f1"}},
		images:  map[string][]models.FileEntry{"f1": entries("J1_a.jpg")},
	}
	an := &fakeAnalyzer{}
	p, store := newProcessor(files, fakeConfig{}, an, nil, Options{})
	s := submitAndWait(t, p, store)

	an.mu.Lock()
	an.err = errors.New("quota")
	an.mu.Unlock()

	_, err := p.Reanalyze(context.Background(), s.ID, s.Records[0].ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrAnalysisFailed))

	got, _ := store.Get(s.ID)
	assert.Equal(t, models.RecordError, got.Records[0].Status)
	assert.Contains(t, got.Records[0].Error, "quota")
}

func TestReanalyze_Rejections(t *testing.T) {
	store := storage.New()
	require.NoError(t, store.Create(&models.Session{ID: "s1", Records: []*models.Record{
		{ID: "pending", Status: models.RecordPending},
		{ID: "saved", Status: models.RecordSaved},
		{ID: "busy", Status: models.RecordResearching},
	}}))
	p := New(store, &fakeFiles{}, fakeConfig{}, &fakeAnalyzer{}, nil, Options{})

	for _, rid := range []string{"pending", "saved", "busy"} {
		_, err := p.Reanalyze(context.Background(), "s1", rid)
		assert.True(t, errors.Is(err, models.ErrConflict), rid)
	}

	_, err := p.Reanalyze(context.Background(), "s1", "missing")
	assert.True(t, errors.Is(err, models.ErrRecordNotFound))
	_, err = p.Reanalyze(context.Background(), "nope", "pending")
	assert.True(t, errors.Is(err, models.ErrSessionNotFound))
}

func TestParseFolderID(t *testing.T) {
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"https://drive.google.com/drive/folders/1AbCdEfGhIjK?usp=sharing", "1AbCdEfGhIjK", false},
		{"https://drive.google.com/drive/u/0/folders/1AbCdEfGhIjK", "1AbCdEfGhIjK", false},
		{"https://drive.google.com/drive/folders/1AbCdEfGhIjK/", "1AbCdEfGhIjK", false},
		{"  1AbCdEfGhIjK_-x  ", "1AbCdEfGhIjK_-x", false},
		{"", "", true},
		{"https://drive.google.com/drive/folders/?usp=sharing", "", true},
		{"https://example.com/something", "", true},
		{"short", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := ParseFolderID(tt.ref)
			if tt.wantErr {
				assert.True(t, errors.Is(err, models.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabel(t *testing.T) {
	d := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "R250102_0001", Label(d, 1))
	assert.Equal(t, "R250102_0123", Label(d, 123))
	assert.Equal(t, "R250102_12345", Label(d, 12345))
}
