package config

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, float64(40), conf.SkillWeight)
	assert.Equal(t, float64(35), conf.UrgencyWeight)
	assert.Equal(t, float64(25), conf.DistanceWeight)
}

func TestNewWeightOverrides(t *testing.T) {
	os.Setenv("MATCH_SKILL_WEIGHT", "50")
	os.Setenv("MATCH_URGENCY_WEIGHT", "30")
	os.Setenv("MATCH_DISTANCE_WEIGHT", "20")
	defer func() {
		os.Unsetenv("MATCH_SKILL_WEIGHT")
		os.Unsetenv("MATCH_URGENCY_WEIGHT")
		os.Unsetenv("MATCH_DISTANCE_WEIGHT")
	}()

	conf := New()

	assert.Equal(t, float64(50), conf.SkillWeight)
	assert.Equal(t, float64(30), conf.UrgencyWeight)
	assert.Equal(t, float64(20), conf.DistanceWeight)
}

func TestNewInvalidWeightFallsBack(t *testing.T) {
	os.Setenv("MATCH_SKILL_WEIGHT", "not-a-number")
	defer os.Unsetenv("MATCH_SKILL_WEIGHT")

	conf := New()

	assert.Equal(t, float64(40), conf.SkillWeight)
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"Response":{"Message":"error it borked","Error":"bad request"}}`, rr.Body.String())
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(1))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(2))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(0))
}
