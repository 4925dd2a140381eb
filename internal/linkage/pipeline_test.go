package linkage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/orglink/internal/model"
	"github.com/sells-group/orglink/internal/store"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) SearchURL(name string) string {
	return "https://dir.example/searchnumber.do?number=" + name
}

func (m *mockSource) DetailURL(href string) string {
	if href == "" {
		return ""
	}
	return "https://dir.example" + href
}

func (m *mockSource) Search(ctx context.Context, name string) ([]model.Candidate, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Candidate), args.Error(1)
}

var (
	iwate = model.Candidate{
		Tel:         "0197000000|0197-00-0000",
		CompanyName: "FOO 株式会社",
		Location:    "岩手県FOO市BAR区佐倉河字BAZ71",
		DetailURL:   "/detail/1",
	}
	osaka = model.Candidate{
		Tel:         "0600000000|06-0000-0000",
		CompanyName: "BAR商事",
		Location:    "大阪府大阪市中央区本町4-4-12",
		DetailURL:   "/detail/2",
	}
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "linkage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func newTestPipeline(t *testing.T, src CandidateSource, st store.Store, mode model.Mode) *Pipeline {
	t.Helper()
	p, err := New(src, st, Options{Mode: mode, AddressThreshold: 0.7, NameThreshold: 0.7})
	require.NoError(t, err)
	return p
}

func TestNew_RejectsBadOptions(t *testing.T) {
	_, err := New(&mockSource{}, nil, Options{Mode: "fuzzy", AddressThreshold: 0.7, NameThreshold: 0.7})
	assert.Error(t, err)

	_, err = New(&mockSource{}, nil, Options{AddressThreshold: 1.5, NameThreshold: 0.7})
	assert.Error(t, err)

	_, err = New(&mockSource{}, nil, Options{AddressThreshold: 0.7, NameThreshold: -0.1})
	assert.Error(t, err)

	p, err := New(&mockSource{}, nil, Options{AddressThreshold: 0, NameThreshold: 1})
	require.NoError(t, err)
	assert.Equal(t, model.ModeAddress, p.opts.Mode)
}

func TestLink_AddressMatch(t *testing.T) {
	src := &mockSource{}
	src.On("Search", mock.Anything, "FOO株式会社").Return([]model.Candidate{osaka, iwate}, nil)
	p := newTestPipeline(t, src, nil, model.ModeAddress)

	res := p.Link(context.Background(), model.QueryRecord{
		Index:    3,
		Name:     "FOO株式会社",
		Location: "岩手県FOO市BAR佐倉河字BAZ71番地",
	})

	assert.True(t, res.Matched)
	assert.Equal(t, 1.0, res.Score)
	assert.Equal(t, "0197000000", res.Tel)
	assert.Equal(t, "0197-00-0000", res.TelHyphen)
	assert.Equal(t, "FOO 株式会社", res.CompanyName)
	assert.Equal(t, iwate.Location, res.Location)
	assert.Equal(t, "https://dir.example/detail/1", res.DetailURL)
	assert.Equal(t, "https://dir.example/searchnumber.do?number=FOO株式会社", res.SearchURL)
	assert.Empty(t, res.Memo)
	assert.Equal(t, 3, res.Record.Index)
	src.AssertExpectations(t)
}

func TestLink_NoCandidates(t *testing.T) {
	src := &mockSource{}
	src.On("Search", mock.Anything, "FOO").Return([]model.Candidate{}, nil)
	p := newTestPipeline(t, src, nil, model.ModeAddress)

	res := p.Link(context.Background(), model.QueryRecord{Name: "FOO", Location: "岩手県FOO市"})

	assert.False(t, res.Matched)
	assert.Equal(t, MemoNoMatch, res.Memo)
	assert.Empty(t, res.Tel)
	assert.Empty(t, res.DetailURL)
	assert.NotEmpty(t, res.SearchURL)
}

func TestLink_BelowThreshold(t *testing.T) {
	src := &mockSource{}
	src.On("Search", mock.Anything, "FOO").Return([]model.Candidate{osaka}, nil)
	p := newTestPipeline(t, src, nil, model.ModeAddress)

	// Same prefecture only scores 0.3.
	res := p.Link(context.Background(), model.QueryRecord{Name: "FOO", Location: "大阪府堺市北区1"})

	assert.False(t, res.Matched)
	assert.Equal(t, MemoNoMatch, res.Memo)
	assert.Zero(t, res.Score)
}

func TestLink_SearchErrorGoesToMemo(t *testing.T) {
	src := &mockSource{}
	src.On("Search", mock.Anything, "FOO").Return(nil, eris.New("search: directory returned 503"))
	p := newTestPipeline(t, src, nil, model.ModeAddress)

	res := p.Link(context.Background(), model.QueryRecord{Name: "FOO", Location: "岩手県FOO市"})

	assert.False(t, res.Matched)
	assert.Equal(t, "error: search: directory returned 503", res.Memo)
	assert.True(t, isErrorMemo(res.Memo))
}

func TestLink_EmptyNameSkipsSearch(t *testing.T) {
	src := &mockSource{}
	p := newTestPipeline(t, src, nil, model.ModeAddress)

	res := p.Link(context.Background(), model.QueryRecord{Name: "  ", Location: "岩手県FOO市"})

	assert.Equal(t, MemoEmptyName, res.Memo)
	src.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestLink_NameModeAcceptsLocationMatch(t *testing.T) {
	src := &mockSource{}
	src.On("Search", mock.Anything, "FOO株式会社").Return([]model.Candidate{osaka, iwate}, nil)
	p := newTestPipeline(t, src, nil, model.ModeName)

	res := p.Link(context.Background(), model.QueryRecord{Name: "FOO株式会社", Location: "岩手県FOO市BAR佐倉河字BAZ71番地"})

	assert.True(t, res.Matched)
	assert.Equal(t, "FOO 株式会社", res.CompanyName)
	assert.Empty(t, res.Memo)
}

func TestLink_NameModeFallsBackToName(t *testing.T) {
	src := &mockSource{}
	src.On("Search", mock.Anything, "FOO株式会社").Return([]model.Candidate{osaka, iwate}, nil)
	p := newTestPipeline(t, src, nil, model.ModeName)

	// The address points at the Osaka listing, whose name does not match.
	res := p.Link(context.Background(), model.QueryRecord{Name: "FOO株式会社", Location: "大阪府大阪市中央区本町4-4-12"})

	assert.True(t, res.Matched)
	assert.Equal(t, "FOO 株式会社", res.CompanyName)
	assert.Equal(t, MemoMatchedByName, res.Memo)
	assert.Equal(t, 1.0, res.Score)
}

func TestLink_NameModeRejectsLocationMatch(t *testing.T) {
	src := &mockSource{}
	src.On("Search", mock.Anything, "BAZ").Return([]model.Candidate{osaka, iwate}, nil)
	p := newTestPipeline(t, src, nil, model.ModeName)

	res := p.Link(context.Background(), model.QueryRecord{Name: "BAZ", Location: "大阪府大阪市中央区本町4-4-12"})

	assert.False(t, res.Matched)
	assert.Equal(t, MemoNameRejected, res.Memo)
	assert.Empty(t, res.CompanyName)
}

func TestRun_CheckpointsEveryRecord(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	src := &mockSource{}
	src.On("Search", mock.Anything, "FOO株式会社").Return([]model.Candidate{iwate}, nil)
	src.On("Search", mock.Anything, "BAR").Return(nil, eris.New("boom"))
	src.On("Search", mock.Anything, "QUX").Return([]model.Candidate{}, nil)
	p := newTestPipeline(t, src, st, model.ModeAddress)

	records := []model.QueryRecord{
		{Index: 0, Name: "FOO株式会社", Location: "岩手県FOO市BAR佐倉河字BAZ71番地", URL: "https://foo.example"},
		{Index: 1, Name: "BAR", Location: "岩手県FOO市"},
		{Index: 2, Name: "QUX", Location: "岩手県FOO市"},
	}
	sum, err := p.Run(ctx, "in.csv", records)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 3, sum.Processed)
	assert.Equal(t, 1, sum.Matched)
	assert.Equal(t, 1, sum.Errors)
	assert.Zero(t, sum.Skipped)

	run, err := st.GetRun(ctx, sum.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, "in.csv", run.Input)

	results, err := st.ListResults(ctx, sum.RunID)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "https://foo.example", results[0].Record.URL)
	assert.True(t, results[0].Matched)
	assert.Equal(t, "error: boom", results[1].Memo)
	assert.Equal(t, MemoNoMatch, results[2].Memo)
}

func TestResume_SkipsStoredRecords(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	records := []model.QueryRecord{
		{Index: 0, Name: "FOO株式会社", Location: "岩手県FOO市BAR佐倉河字BAZ71番地"},
		{Index: 1, Name: "BAR商事", Location: "大阪府大阪市中央区本町4-4-12"},
	}

	run, err := st.CreateRun(ctx, "in.csv", model.ModeName, len(records))
	require.NoError(t, err)
	require.NoError(t, st.SaveResult(ctx, model.LinkResult{RunID: run.ID, Record: records[0], Memo: MemoNoMatch}))
	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed, "interrupted"))

	src := &mockSource{}
	src.On("Search", mock.Anything, "BAR商事").Return([]model.Candidate{osaka}, nil).Once()
	p := newTestPipeline(t, src, st, model.ModeAddress)

	sum, err := p.Resume(ctx, run.ID, records)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 1, sum.Matched)
	src.AssertExpectations(t)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, model.ModeName, got.Mode)

	stats, err := st.RunStats(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Matched)
}

func TestResume_RecordCountMismatch(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	run, err := st.CreateRun(ctx, "in.csv", model.ModeAddress, 5)
	require.NoError(t, err)

	p := newTestPipeline(t, &mockSource{}, st, model.ModeAddress)
	_, err = p.Resume(ctx, run.ID, []model.QueryRecord{{Index: 0, Name: "FOO"}})
	assert.Error(t, err)
}

func TestRun_CancelledMarksFailed(t *testing.T) {
	st := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &mockSource{}
	src.On("Search", mock.Anything, "FOO").
		Run(func(mock.Arguments) { cancel() }).
		Return([]model.Candidate{}, nil).Once()
	p := newTestPipeline(t, src, st, model.ModeAddress)

	sum, err := p.Run(ctx, "in.csv", []model.QueryRecord{
		{Index: 0, Name: "FOO"},
		{Index: 1, Name: "BAR"},
	})
	require.Error(t, err)
	assert.Equal(t, 1, sum.Processed)
	src.AssertExpectations(t)

	run, err := st.GetRun(context.Background(), sum.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, run.Status)
	assert.Contains(t, run.Error, "context canceled")

	results, err := st.ListResults(context.Background(), sum.RunID)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRun_CancelledSearchIsNotCheckpointed(t *testing.T) {
	st := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records := []model.QueryRecord{
		{Index: 0, Name: "BAR商事", Location: "大阪府大阪市中央区本町4-4-12"},
		{Index: 1, Name: "FOO株式会社", Location: "岩手県FOO市BAR佐倉河字BAZ71番地"},
	}
	src := &mockSource{}
	src.On("Search", mock.Anything, "BAR商事").Return([]model.Candidate{osaka}, nil).Once()
	src.On("Search", mock.Anything, "FOO株式会社").
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, eris.Wrap(context.Canceled, "search: fetch results")).Once()
	p := newTestPipeline(t, src, st, model.ModeAddress)

	sum, err := p.Run(ctx, "in.csv", records)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sum.Processed)
	assert.Zero(t, sum.Errors)
	src.AssertExpectations(t)

	run, err := st.GetRun(context.Background(), sum.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, run.Status)

	results, err := st.ListResults(context.Background(), sum.RunID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Record.Index)

	retry := &mockSource{}
	retry.On("Search", mock.Anything, "FOO株式会社").Return([]model.Candidate{iwate}, nil).Once()
	resumed, err := newTestPipeline(t, retry, st, model.ModeAddress).Resume(context.Background(), sum.RunID, records)
	require.NoError(t, err)
	assert.Equal(t, 1, resumed.Skipped)
	assert.Equal(t, 1, resumed.Processed)
	assert.Equal(t, 1, resumed.Matched)
	retry.AssertExpectations(t)

	run, err = st.GetRun(context.Background(), sum.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
}

func TestResume_RetriesErrorRows(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	records := []model.QueryRecord{
		{Index: 0, Name: "BAR商事", Location: "大阪府大阪市中央区本町4-4-12"},
		{Index: 1, Name: "FOO株式会社", Location: "岩手県FOO市BAR佐倉河字BAZ71番地"},
	}

	run, err := st.CreateRun(ctx, "in.csv", model.ModeAddress, len(records))
	require.NoError(t, err)
	require.NoError(t, st.SaveResult(ctx, model.LinkResult{RunID: run.ID, Record: records[0], Memo: MemoNoMatch}))
	require.NoError(t, st.SaveResult(ctx, model.LinkResult{RunID: run.ID, Record: records[1], Memo: "error: search: status 503"}))
	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusComplete, ""))

	src := &mockSource{}
	src.On("Search", mock.Anything, "FOO株式会社").Return([]model.Candidate{iwate}, nil).Once()
	p := newTestPipeline(t, src, st, model.ModeAddress)

	sum, err := p.Resume(ctx, run.ID, records)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 1, sum.Matched)
	src.AssertExpectations(t)

	results, err := st.ListResults(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, MemoNoMatch, results[0].Memo)
	assert.True(t, results[1].Matched)
	assert.Equal(t, "FOO 株式会社", results[1].CompanyName)
}
