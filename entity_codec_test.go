package pgmodel_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgmodel"
	"github.com/jackc/pgmodel/pgtype"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityCodecEncodeSQL(t *testing.T) {
	session := newFixtureSession(t)

	sql, err := session.EncodeSQL("complex_fixture", complexFixture())
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "complex_fixture_sql", []byte(sql))
}

func TestEntityCodecEncodeText(t *testing.T) {
	session := newFixtureSession(t)

	text, err := session.EncodeText("complex_fixture", complexFixture())
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "complex_fixture_text", text)
}

func TestEntityCodecEncodeNull(t *testing.T) {
	session := newFixtureSession(t)

	sql, err := session.EncodeSQL("complex_fixture", nil)
	require.NoError(t, err)
	assert.Equal(t, "NULL::complex_fixture", sql)

	sql, err = session.EncodeSQL("complex_fixture", (*pgmodel.Record)(nil))
	require.NoError(t, err)
	assert.Equal(t, "NULL::complex_fixture", sql)

	text, err := session.EncodeText("complex_fixture", nil)
	require.NoError(t, err)
	assert.Nil(t, text)
}

func TestEntityCodecEncodeSelectsDeclaredFields(t *testing.T) {
	session := pgmodel.NewSession(nil)

	s := pgmodel.NewRowStructure()
	s.SetRelation("complex_number")
	require.NoError(t, s.AddField("id", "int4"))
	require.NoError(t, s.AddField("real", "float8"))
	require.NoError(t, s.AddField("imaginary", "float8"))
	numberType := &pgmodel.EntityType{Name: "Number"}
	session.RegisterEntity(numberType, s)

	r := pgmodel.NewRecord(numberType, map[string]any{"imaginary": 2.344, "real": 1.233, "undeclared": "x"})
	sql, err := session.EncodeSQL("complex_number", r)
	require.NoError(t, err)
	assert.Equal(t, "row(float8 '1.233',float8 '2.344')::complex_number", sql)

	sql, err = session.EncodeSQL("Number", map[string]any{"id": 3})
	require.NoError(t, err)
	assert.Equal(t, "row(int4 '3')::complex_number", sql)

	text, err := session.EncodeText("complex_number", map[string]any{"real": 1.5, "undeclared": "x"})
	require.NoError(t, err)
	assert.Equal(t, "(1.5)", string(text))
}

func TestEntityCodecStrictRecords(t *testing.T) {
	session := pgmodel.NewSession(&pgmodel.Config{StrictRecords: true})
	session.RegisterEntity(complexNumberType, complexNumberStructure(t))

	_, err := session.EncodeSQL("pomm_test.complex_number", map[string]any{"real": 1.0, "undeclared": "x"})
	var unknown *pgmodel.UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "undeclared", unknown.Field)
}

func TestEntityCodecTypeMismatch(t *testing.T) {
	session := newFixtureSession(t)

	var mismatch *pgmodel.TypeMismatchError

	_, err := session.EncodeSQL("complex_fixture", complexNumber(1, 2))
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "ComplexFixture", mismatch.Expected)
	assert.EqualError(t, err, "cannot encode record of type ComplexNumber as complex_fixture: expected a record of type ComplexFixture or a map[string]any")

	_, err = session.EncodeText("complex_fixture", "(1,2)")
	require.ErrorAs(t, err, &mismatch)

	_, err = session.EncodeSQL("complex_fixture", map[string]any{"complex_number": "not a record"})
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "ComplexNumber", mismatch.Expected)
}

func TestEntityCodecDecodeComplexNumber(t *testing.T) {
	session := newFixtureSession(t)

	v, err := session.Decode("pomm_test.complex_number", []byte("(1.233,2.344)"))
	require.NoError(t, err)
	r := v.(*pgmodel.Record)

	assert.Equal(t, complexNumberType, r.Type())
	assert.Equal(t, 1.233, mustGet(t, r, "real"))
	assert.Equal(t, 2.344, mustGet(t, r, "imaginary"))

	v, err = session.Decode("ComplexNumber", []byte("(1.233,2.344)"))
	require.NoError(t, err)
	assert.NotSame(t, r, v, "records without primary key are never merged")
}

func TestEntityCodecDecodeFieldExample(t *testing.T) {
	session := pgmodel.NewSession(nil)

	s := pgmodel.NewRowStructure()
	s.SetRelation("some_entity")
	require.NoError(t, s.AddField("a_field", "int4"))
	require.NoError(t, s.AddField("a_null_field", "bool"))
	require.NoError(t, s.AddField("some_fields", "int4[]"))
	session.RegisterEntity(&pgmodel.EntityType{Name: "SomeEntity"}, s)

	v, err := session.Decode("some_entity", []byte(`(34,,"{4,3}")`))
	require.NoError(t, err)
	r := v.(*pgmodel.Record)

	assert.Equal(t, int32(34), mustGet(t, r, "a_field"))
	assert.True(t, r.Has("a_null_field"))
	assert.Nil(t, mustGet(t, r, "a_null_field"))
	assert.Equal(t, []any{int32(4), int32(3)}, mustGet(t, r, "some_fields"))
}

func TestEntityCodecDecodeNoRecord(t *testing.T) {
	session := newFixtureSession(t)

	for _, src := range [][]byte{nil, []byte(""), []byte("  "), []byte("()")} {
		v, err := session.Decode("complex_fixture", src)
		require.NoError(t, err, "%q", src)
		assert.Nil(t, v, "%q", src)
	}
}

func TestEntityCodecDecodeParseErrors(t *testing.T) {
	session := newFixtureSession(t)

	for _, src := range []string{
		`(1.233`,
		`1.233,2.344`,
		`(1.233,"2.344)`,
		`(1.233)`,
		`(1.233,2.344,3.455)`,
	} {
		_, err := session.Decode("pomm_test.complex_number", []byte(src))
		var parseErr *pgmodel.ParseError
		require.ErrorAs(t, err, &parseErr, "%q", src)
		assert.Equal(t, src, parseErr.Text)
		assert.Equal(t, "pomm_test.complex_number", parseErr.TypeName)
	}

	_, err := session.Decode("pomm_test.complex_number", []byte(`(abc,1)`))
	var fieldErr *pgmodel.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "real", fieldErr.Field)
}

func TestEntityCodecDecodeComplexFixture(t *testing.T) {
	session := newFixtureSession(t)

	src := []byte(`(1,,"(1.233,2.344)","{""(3.455,4.566)"",""(5.677,6.788)"",NULL}","2014-10-24 12:44:40.021324+00:00","{""1982-04-21 23:12:43.000000+00:00""}")`)
	v, err := session.Decode("complex_fixture", src)
	require.NoError(t, err)
	r := v.(*pgmodel.Record)

	assert.Equal(t, pgmodel.StatusExists, r.Status())
	assert.Equal(t, int32(1), mustGet(t, r, "id"))
	assert.Nil(t, mustGet(t, r, "version_id"))

	number := mustGet(t, r, "complex_number").(*pgmodel.Record)
	assert.Equal(t, map[string]any{"real": 1.233, "imaginary": 2.344}, number.Extract())

	numbers := mustGet(t, r, "complex_numbers").([]any)
	require.Len(t, numbers, 3)
	assert.Equal(t, map[string]any{"real": 3.455, "imaginary": 4.566}, numbers[0].(*pgmodel.Record).Extract())
	assert.Equal(t, map[string]any{"real": 5.677, "imaginary": 6.788}, numbers[1].(*pgmodel.Record).Extract())
	assert.Nil(t, numbers[2])

	createdAt := mustGet(t, r, "created_at").(time.Time)
	assert.True(t, createdAt.Equal(time.Date(2014, 10, 24, 12, 44, 40, 21324000, time.UTC)))

	updatedAt := mustGet(t, r, "updated_at").([]any)
	require.Len(t, updatedAt, 1)
	assert.True(t, updatedAt[0].(time.Time).Equal(time.Date(1982, 4, 21, 23, 12, 43, 0, time.UTC)))

	text, err := session.EncodeText("complex_fixture", r)
	require.NoError(t, err)
	assert.Equal(t, string(src), string(text))
}

func TestEntityCodecRoundTrip(t *testing.T) {
	session := newFixtureSession(t)

	noteType := &pgmodel.EntityType{Name: "Note"}
	s := pgmodel.NewRowStructure()
	s.SetRelation("note")
	require.NoError(t, s.AddField("id", "int4"))
	require.NoError(t, s.AddField("body", "text"))
	require.NoError(t, s.AddField("empty", "text"))
	require.NoError(t, s.AddField("missing", "text"))
	require.NoError(t, s.AddField("tags", "text[]"))
	require.NoError(t, s.AddField("attrs", "hstore"))
	require.NoError(t, s.AddField("position", "pomm_test.complex_number"))
	require.NoError(t, s.AddField("history", "pomm_test.complex_number[]"))
	session.RegisterEntity(noteType, s)

	body := `a, "quoted" (value) with \backslash\ and {braces}`
	value := "v, \"w\""
	in := pgmodel.NewRecord(noteType, map[string]any{
		"id":       int32(5),
		"body":     body,
		"empty":    "",
		"missing":  nil,
		"tags":     []any{"", "NULL", nil, "x,y", `"q"`, `\`},
		"attrs":    map[string]*string{"k, 1": &value, "n": nil},
		"position": complexNumber(-1.5, 0),
		"history":  []any{complexNumber(1, 2), nil},
	})

	text, err := session.EncodeText("note", in)
	require.NoError(t, err)

	v, err := session.Decode("note", text)
	require.NoError(t, err)
	out := v.(*pgmodel.Record)

	assert.Equal(t, in.Extract(), out.Extract())
	assert.Equal(t, "", mustGet(t, out, "empty"))
	assert.Nil(t, mustGet(t, out, "missing"))
	assert.NotEqual(t, mustGet(t, out, "empty"), mustGet(t, out, "missing"))

	again, err := session.EncodeText("note", out)
	require.NoError(t, err)
	assert.Equal(t, string(text), string(again))
}

// A three level graph: a composite holding a composite holding an array of a third composite.
func TestEntityCodecNestedRecursion(t *testing.T) {
	session := pgmodel.NewSession(nil)

	leafType := &pgmodel.EntityType{Name: "Leaf"}
	leaf := pgmodel.NewRowStructure()
	leaf.SetRelation("leaf")
	require.NoError(t, leaf.AddField("x", "int4"))
	require.NoError(t, leaf.AddField("y", "text"))
	session.RegisterEntity(leafType, leaf)

	branchType := &pgmodel.EntityType{Name: "Branch"}
	branch := pgmodel.NewRowStructure()
	branch.SetRelation("branch")
	require.NoError(t, branch.AddField("name", "text"))
	require.NoError(t, branch.AddField("leaves", "leaf[]"))
	session.RegisterEntity(branchType, branch)

	rootType := &pgmodel.EntityType{Name: "Root"}
	root := pgmodel.NewRowStructure()
	root.SetRelation("root")
	require.NoError(t, root.AddField("id", "int4"))
	require.NoError(t, root.AddField("branch", "branch"))
	require.NoError(t, root.SetPrimaryKey("id"))
	session.RegisterEntity(rootType, root)

	// As PostgreSQL outputs row(1, row('bee', ARRAY[row(1,'a'), row(2,'b c')]::leaf[])::branch)::root.
	src := `(1,"(bee,""{""""(1,a)"""",""""(2,\\\\""""b c\\\\"""")""""}"")")`

	v, err := session.Decode("root", []byte(src))
	require.NoError(t, err)
	r := v.(*pgmodel.Record)

	assert.Equal(t, map[string]any{
		"id": int32(1),
		"branch": map[string]any{
			"name": "bee",
			"leaves": []any{
				map[string]any{"x": int32(1), "y": "a"},
				map[string]any{"x": int32(2), "y": "b c"},
			},
		},
	}, r.Extract())

	b := mustGet(t, r, "branch").(*pgmodel.Record)
	assert.Equal(t, branchType, b.Type())
	leaves := mustGet(t, b, "leaves").([]any)
	assert.Equal(t, leafType, leaves[1].(*pgmodel.Record).Type())

	text, err := session.EncodeText("root", r)
	require.NoError(t, err)
	assert.Equal(t, src, string(text))

	sql, err := session.EncodeSQL("root", r)
	require.NoError(t, err)
	assert.Equal(t,
		"row(int4 '1',row(text 'bee',ARRAY[row(int4 '1',text 'a')::leaf,row(int4 '2',text 'b c')::leaf]::leaf[])::branch)::root",
		sql,
	)
}

func TestEntityCodecDecodeProjection(t *testing.T) {
	session := newFixtureSession(t)
	codec, ok := session.EntityCodec(complexNumberType)
	require.True(t, ok)

	p := codec.Projection()
	require.NoError(t, p.SetField("magnitude", "sqrt(%:real:% ^ 2 + %:imaginary:% ^ 2)", "float8"))
	require.NoError(t, p.SetField("label", "'n'", ""))

	r, err := codec.DecodeProjection(session.TypeMap(), p, []byte("(3,4,5,n)"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"real": 3.0, "imaginary": 4.0, "magnitude": 5.0, "label": "n"}, r.Extract())

	_, err = codec.DecodeProjection(session.TypeMap(), p, []byte("(3,4)"))
	var parseErr *pgmodel.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestEntityCodecUnregisteredFieldType(t *testing.T) {
	session := pgmodel.NewSession(nil)

	s := pgmodel.NewRowStructure()
	s.SetRelation("broken")
	require.NoError(t, s.AddField("shape", "polygon"))
	session.RegisterEntity(&pgmodel.EntityType{Name: "Broken"}, s)

	_, err := session.Decode("broken", []byte("(x)"))
	var noCodec *pgmodel.NoCodecError
	require.ErrorAs(t, err, &noCodec)

	var unregistered *pgtype.UnregisteredTypeError
	require.True(t, errors.As(err, &unregistered))
	assert.Equal(t, "polygon", unregistered.Name)

	session.RegisterCodec("polygon", pgtype.TextCodec{})
	v, err := session.Decode("broken", []byte("(x)"))
	require.NoError(t, err)
	assert.Equal(t, "x", mustGet(t, v.(*pgmodel.Record), "shape"))
}
