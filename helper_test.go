package pgmodel_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgmodel"
	"github.com/jackc/pgmodel/log/testingadapter"
	"github.com/stretchr/testify/require"
)

var (
	complexNumberType  = &pgmodel.EntityType{Name: "ComplexNumber"}
	complexFixtureType = &pgmodel.EntityType{Name: "ComplexFixture"}
)

func complexNumberStructure(t testing.TB) *pgmodel.RowStructure {
	s := pgmodel.NewRowStructure()
	s.SetRelation("pomm_test.complex_number")
	require.NoError(t, s.AddField("real", "float8"))
	require.NoError(t, s.AddField("imaginary", "float8"))
	return s
}

func complexFixtureStructure(t testing.TB) *pgmodel.RowStructure {
	s := pgmodel.NewRowStructure()
	s.SetRelation("complex_fixture")
	require.NoError(t, s.AddField("id", "int4"))
	require.NoError(t, s.AddField("version_id", "int4"))
	require.NoError(t, s.AddField("complex_number", "pomm_test.complex_number"))
	require.NoError(t, s.AddField("complex_numbers", "pomm_test.complex_number[]"))
	require.NoError(t, s.AddField("created_at", "timestamptz"))
	require.NoError(t, s.AddField("updated_at", "timestamptz[]"))
	require.NoError(t, s.SetPrimaryKey("id", "version_id"))
	return s
}

// newFixtureSession returns a session with the complex number and complex fixture entities registered.
func newFixtureSession(t testing.TB) *pgmodel.Session {
	session := pgmodel.NewSession(&pgmodel.Config{
		Logger:   testingadapter.NewLogger(t),
		LogLevel: pgmodel.LogLevelDebug,
	})
	session.RegisterEntity(complexNumberType, complexNumberStructure(t))
	session.RegisterEntity(complexFixtureType, complexFixtureStructure(t))
	return session
}

func complexNumber(real, imaginary float64) *pgmodel.Record {
	return pgmodel.NewRecord(complexNumberType, map[string]any{"real": real, "imaginary": imaginary})
}

func complexFixture() *pgmodel.Record {
	return pgmodel.NewRecord(complexFixtureType, map[string]any{
		"id":              1,
		"version_id":      nil,
		"complex_number":  complexNumber(1.233, 2.344),
		"complex_numbers": []any{complexNumber(3.455, 4.566), complexNumber(5.677, 6.788), nil},
		"created_at":      time.Date(2014, 10, 24, 12, 44, 40, 21324000, time.UTC),
		"updated_at":      []time.Time{time.Date(1982, 4, 21, 23, 12, 43, 0, time.UTC)},
	})
}

func mustGet(t testing.TB, r *pgmodel.Record, name string) any {
	t.Helper()
	v, err := r.Get(name)
	require.NoError(t, err)
	return v
}

type testLog struct {
	lvl  pgmodel.LogLevel
	msg  string
	data map[string]any
}

type testLogger struct {
	logs []testLog
}

func (l *testLogger) Log(ctx context.Context, level pgmodel.LogLevel, msg string, data map[string]any) {
	l.logs = append(l.logs, testLog{lvl: level, msg: msg, data: data})
}

func (l *testLogger) FilterByMsg(msg string) (res []testLog) {
	for _, log := range l.logs {
		if log.msg == msg {
			res = append(res, log)
		}
	}
	return res
}
