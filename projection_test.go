package pgmodel_test

import (
	"testing"

	"github.com/jackc/pgmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectionFromStructure(t *testing.T) {
	p := pgmodel.NewProjection(complexFixtureType, complexFixtureStructure(t))

	assert.Equal(t, complexFixtureType, p.EntityType())
	assert.Equal(t, []string{"id", "version_id", "complex_number", "complex_numbers", "created_at", "updated_at"}, p.FieldNames())

	typeName, err := p.FieldType("complex_numbers")
	require.NoError(t, err)
	assert.Equal(t, "pomm_test.complex_number", typeName)

	isArray, err := p.IsArray("complex_numbers")
	require.NoError(t, err)
	assert.True(t, isArray)

	isArray, err = p.IsArray("complex_number")
	require.NoError(t, err)
	assert.False(t, isArray)

	assert.Equal(t, "pomm_test.complex_number[]", p.FieldTypes()["complex_numbers"])
}

func TestProjectionFormat(t *testing.T) {
	s := pgmodel.NewRowStructure()
	require.NoError(t, s.AddField("id", "int4"))
	require.NoError(t, s.AddField("name", "text"))
	p := pgmodel.NewProjection(nil, s)

	assert.Equal(t, `"id", "name"`, p.FormatFields(""))
	assert.Equal(t, `t."id", t."name"`, p.FormatFields("t"))
	assert.Equal(t, `"id" as "id", "name" as "name"`, p.FormatFieldsWithFieldAlias(""))
	assert.Equal(t, `t."id" as "id", t."name" as "name"`, p.FormatFieldsWithFieldAlias("t"))
	assert.Equal(t, p.FormatFieldsWithFieldAlias(""), p.String())

	require.NoError(t, p.SetField("full", "%:name:% || ' #' || %:id:%", "text"))
	require.NoError(t, p.SetField(`we"ird\name`, "count(*)", "int8"))

	expr, err := p.FieldWithTableAlias("full", "t")
	require.NoError(t, err)
	assert.Equal(t, `t."name" || ' #' || t."id"`, expr)

	assert.Equal(t,
		`"id" as "id", "name" as "name", "name" || ' #' || "id" as "full", count(*) as "we\"ird\\name"`,
		p.FormatFieldsWithFieldAlias(""),
	)
}

func TestProjectionSetFieldTypeAndUnset(t *testing.T) {
	p := pgmodel.NewProjection(nil, complexNumberStructure(t))

	require.NoError(t, p.SetField("magnitude", "sqrt(%:real:% ^ 2 + %:imaginary:% ^ 2)", ""))
	typeName, err := p.FieldType("magnitude")
	require.NoError(t, err)
	assert.Equal(t, "", typeName)

	require.NoError(t, p.SetFieldType("magnitude", "float8"))
	typeName, err = p.FieldType("magnitude")
	require.NoError(t, err)
	assert.Equal(t, "float8", typeName)

	p.UnsetField("real")
	p.UnsetField("not_there")
	assert.Equal(t, []string{"imaginary", "magnitude"}, p.FieldNames())
	assert.False(t, p.HasField("real"))

	require.Error(t, p.SetField("", "1", "int4"))
	require.Error(t, p.SetField("x", "", "int4"))
}

func TestProjectionUnknownField(t *testing.T) {
	p := pgmodel.NewProjection(complexNumberType, complexNumberStructure(t))

	var unknown *pgmodel.UnknownFieldError

	_, err := p.FieldType("nope")
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"real", "imaginary"}, unknown.Available)
	assert.Contains(t, err.Error(), "projection of ComplexNumber")

	_, err = p.IsArray("nope")
	require.ErrorAs(t, err, &unknown)

	_, err = p.FieldWithTableAlias("nope", "")
	require.ErrorAs(t, err, &unknown)

	err = p.SetFieldType("nope", "int4")
	require.ErrorAs(t, err, &unknown)
}

func TestProjectionClone(t *testing.T) {
	p := pgmodel.NewProjection(complexNumberType, complexNumberStructure(t))
	c := p.Clone()
	c.UnsetField("real")

	assert.True(t, p.HasField("real"))
	assert.False(t, c.HasField("real"))
}
