package transform

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/customers_etl/ETL/config"
	"github.com/LilVoxy/customers_etl/ETL/extractors"
	"github.com/LilVoxy/customers_etl/ETL/models"
	"github.com/LilVoxy/customers_etl/ETL/testutil"
	"github.com/LilVoxy/customers_etl/ETL/utils"
)

func TestTransformerTransform(t *testing.T) {
	cfg := config.GetConfig()
	cfg.ChunkSize = 2
	cfg.Workers = 2

	a := testutil.ValidRow("00000001")
	aAgain := testutil.ValidRow("00000001")
	aAgain.Phone = "000000000"
	b := testutil.ValidRow("00000002")
	b.Email = ""
	b.Status = "invalido"
	c := testutil.ValidRow("00000003")
	c.Occupation = ""

	input := testutil.Lines(cfg.Widths, a, aAgain, b, c)
	reader, err := extractors.NewFixedWidthReader(strings.NewReader(input), cfg.Widths, cfg.ChunkSize)
	require.NoError(t, err)

	data, err := NewTransformer(cfg, runTime, utils.NewNopLogger()).Transform(context.Background(), reader)
	require.NoError(t, err)

	assert.Equal(t, 2, data.Chunks)
	assert.Equal(t, 4, data.RecordsProcessed())
	require.Len(t, data.Customers, 3)
	assert.True(t, data.Customers[0].BestContactOccupation)
	assert.False(t, data.Customers[1].BestContactOccupation)
	assert.False(t, data.Customers[2].BestContactOccupation)

	// b has no email; a's duplicate email collapses
	require.Len(t, data.Emails, 2)
	assert.Equal(t, "00000003", data.Emails[1].FiscalID)

	// a's zero phone is dropped
	require.Len(t, data.Phones, 3)

	tables := data.Tables()
	require.Len(t, tables, 3)
	assert.Equal(t, models.TableCustomers, tables[0].Name)
	assert.Equal(t, models.TableEmails, tables[1].Name)
	assert.Equal(t, models.TablePhones, tables[2].Name)
}

func TestTransformerTransformParseError(t *testing.T) {
	cfg := config.GetConfig()
	bad := testutil.ValidRow("00000001")
	bad.DueDate = "2024-13-01"

	reader, err := extractors.NewFixedWidthReader(strings.NewReader(testutil.Lines(cfg.Widths, bad)), cfg.Widths, cfg.ChunkSize)
	require.NoError(t, err)

	data, err := NewTransformer(cfg, runTime, utils.NewNopLogger()).Transform(context.Background(), reader)
	assert.ErrorIs(t, err, models.ErrParse)
	assert.Nil(t, data)
}
