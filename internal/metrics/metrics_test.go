package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CountsFetchesAndContacts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New(reg)
	require.NoError(t, err)

	r.Fetch("http", nil)
	r.Fetch("http", nil)
	r.Fetch("http", errors.New("boom"))
	r.Fetch("render", nil)
	r.Contacts([]string{"email", "email", "phone"})
	r.RenderFallback()
	r.Run("found", 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fetches.WithLabelValues("http", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetches.WithLabelValues("http", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetches.WithLabelValues("render", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.contacts.WithLabelValues("email")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.renderFallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("found")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.runDuration))
}

func TestRecorder_DoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Fetch("http", nil)
		r.Contacts([]string{"email"})
		r.RenderFallback()
		r.Run("empty", time.Second)
	})
}
