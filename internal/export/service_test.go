package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

var contacts = []entity.Contact{
	{Name: "Amy Lee", Role: "PRODUCER", Email: "amy@lee.com", Confidence: 0.84, Source: constants.SourcePattern, LineNumber: 8},
	{Name: "John Doe", Role: "PHOTOGRAPHER", Phone: "+19175551234", Company: "Doe Studio", Confidence: 0.74, Source: constants.SourceAIEnhanced},
}

type fakeRuns struct {
	contacts map[uuid.UUID][]entity.Contact
}

func (f *fakeRuns) Migrate(context.Context) error { return nil }
func (f *fakeRuns) SaveRun(context.Context, entity.ExtractionRun, []entity.Contact) error {
	return nil
}

func (f *fakeRuns) GetRun(_ context.Context, id uuid.UUID) (entity.ExtractionRun, error) {
	if _, ok := f.contacts[id]; !ok {
		return entity.ExtractionRun{}, common.ErrNotFound
	}
	return entity.ExtractionRun{ID: id}, nil
}

func (f *fakeRuns) ListRuns(context.Context, int) ([]entity.ExtractionRun, error) { return nil, nil }

func (f *fakeRuns) ListContacts(_ context.Context, id uuid.UUID) ([]entity.Contact, error) {
	return f.contacts[id], nil
}

func TestContactsXLSX(t *testing.T) {
	b, err := ContactsXLSX(contacts)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Contacts"}, f.GetSheetList())
	rows, err := f.GetRows("Contacts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, "Amy Lee", rows[1][0])
	assert.Equal(t, "0.84", rows[1][6])
	assert.Equal(t, "8", rows[1][8])
	assert.Equal(t, "+19175551234", rows[2][3])
	assert.Equal(t, "ai_enhanced", rows[2][7])
}

func TestContactsXLSX_Empty(t *testing.T) {
	b, err := ContactsXLSX(nil)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Contacts")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, contacts))
	assert.Equal(t,
		"Name,Role,Email,Phone,Company,Section,Confidence,Source,Line\n"+
			"Amy Lee,PRODUCER,amy@lee.com,,,,0.840,pattern,8\n"+
			"John Doe,PHOTOGRAPHER,,+19175551234,Doe Studio,,0.740,ai_enhanced,\n",
		buf.String())
}

func TestExportRunXLSX(t *testing.T) {
	id := uuid.New()
	svc := NewService(&fakeRuns{contacts: map[uuid.UUID][]entity.Contact{id: contacts}}, nil)

	b, err := svc.ExportRunXLSX(context.Background(), id)
	require.NoError(t, err)
	assert.NotEmpty(t, b)

	_, err = svc.ExportRunXLSX(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}
