package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/core"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

type memStore struct {
	runs     []entity.ExtractionRun
	contacts [][]entity.Contact
	err      error
}

func (m *memStore) SaveRun(_ context.Context, run entity.ExtractionRun, contacts []entity.Contact) error {
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, run)
	m.contacts = append(m.contacts, contacts)
	return nil
}

func newProcessor(store Store) *Processor {
	return NewProcessor(nil, nil, core.NewExtractor(nil, core.DefaultConfig(), nil), store)
}

func TestProcessText_StoresRun(t *testing.T) {
	store := &memStore{}
	out, err := newProcessor(store).ProcessText(context.Background(), "inline.txt", "PHOTOGRAPHER: John Doe / 917-555-1234", entity.Options{})
	require.NoError(t, err)

	require.True(t, out.Result.Success)
	require.Len(t, store.runs, 1)
	run := store.runs[0]
	assert.Equal(t, out.RunID, run.ID)
	assert.Equal(t, "inline.txt", run.FileName)
	assert.Equal(t, constants.RunStatusSucceeded, run.Status)
	assert.Equal(t, 1, run.ContactCount)
	assert.Equal(t, "John Doe", store.contacts[0][0].Name)
}

func TestProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crew.csv")
	require.NoError(t, os.WriteFile(path, []byte("PHOTOGRAPHER: John Doe / 917-555-1234\n"), 0o600))

	out, err := newProcessor(nil).ProcessFile(context.Background(), path, entity.Options{})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", out.Document.MimeType)
	require.Len(t, out.Result.Contacts, 1)
	assert.Equal(t, "John Doe", out.Result.Contacts[0].Name)
}

func TestProcessFile_LoadError(t *testing.T) {
	store := &memStore{}
	_, err := newProcessor(store).ProcessFile(context.Background(), "/nope/sheet.docx", entity.Options{})
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
	assert.Empty(t, store.runs)
}

func TestProcessBytes_FailureResultIsStored(t *testing.T) {
	store := &memStore{}
	out, err := newProcessor(store).ProcessBytes(context.Background(), "short.txt", []byte("hi there"), entity.Options{})
	require.NoError(t, err)
	assert.False(t, out.Result.Success)
	require.Len(t, store.runs, 1)
	assert.Equal(t, constants.RunStatusFailed, store.runs[0].Status)
}

func TestProcess_StoreError(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	out, err := newProcessor(store).ProcessText(context.Background(), "a.txt", "PHOTOGRAPHER: John Doe / 917-555-1234", entity.Options{})
	assert.EqualError(t, err, "disk full")
	assert.NotNil(t, out.Result)
}
