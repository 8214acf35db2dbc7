// Package pgmodel hydrates PostgreSQL composite values into records.
/*
A RowStructure describes a relation or composite type: its fields in order, their types and its primary key. An
EntityCodec registered for the type decodes the text of a composite value such as (1,,"(1.233,2.344)") into a
*Record and encodes records back either as a SQL expression such as row(int4 '1',NULL::int4)::my_type or in the
standard text format used for query parameters.

Establishing a Session

A Session is a working set. Entity types are registered in it and every record it decodes goes through its
IdentityMapper.

	session := pgmodel.NewSession(nil)

	complexNumber := pgmodel.NewRowStructure()
	complexNumber.SetRelation("pomm_test.complex_number")
	complexNumber.AddField("real", "float8")
	complexNumber.AddField("imaginary", "float8")
	session.RegisterEntity(&pgmodel.EntityType{Name: "ComplexNumber"}, complexNumber)

	v, err := session.Decode("pomm_test.complex_number", []byte("(1.233,2.344)"))

Fields whose type is another registered composite type, or an array of one, decode into nested records and []any of
records.

Identity

When the structure has a primary key, decoding the same key twice in one Session returns the same *Record. The values
of the second decode are merged into it field by field, the last decode winning. Records of different entity types
never share an identity. Sessions never share records.

Records

A Record holds named values and a Status. Set and Clear mark it StatusModified. Records kept by the identity mapper
are StatusExists.

Logging

pgmodel defines a simple logger interface. Adapters for several logging libraries are in the log directory.
*/
package pgmodel
