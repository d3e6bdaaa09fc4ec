package layout

import (
	"testing"

	"github.com/Veraticus/notecheck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaders(t *testing.T) {
	catalogue := model.DefaultCatalogue()
	headers := Headers(catalogue)

	require.Len(t, headers, 19)
	assert.Equal(t, "Client Name", headers[0])
	assert.Equal(t, "Start Date", headers[1])
	assert.Equal(t, model.DocServiceRegistrationForm, headers[2])
	assert.Equal(t, model.DocTreatmentPlan, headers[17])
	assert.Equal(t, "Authors", headers[18])
	assert.Equal(t, 18, AuthorsColumn(catalogue))
}

func TestStatusFill(t *testing.T) {
	assert.Equal(t, "B7E1CD", StatusFill(model.StatusPresent))
	assert.Equal(t, "F4C7C3", StatusFill(model.StatusMissing))
	assert.Equal(t, "808080", StatusFill(model.StatusNotApplicable))
	assert.Equal(t, "", StatusFill("maybe"))
}

func TestRGB(t *testing.T) {
	r, g, b, err := RGB("FF8000")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 0.001)
	assert.InDelta(t, 128.0/255, g, 0.001)
	assert.InDelta(t, 0.0, b, 0.001)

	_, _, _, err = RGB("fff")
	assert.Error(t, err)
	_, _, _, err = RGB("GGGGGG")
	assert.Error(t, err)
}
