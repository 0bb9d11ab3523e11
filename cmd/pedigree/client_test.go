package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintPedigree(t *testing.T) {
	raw := `{
		"identifier":"C001","name":"Calf","gender":"male","date_of_birth":"2025-03-01","animal_type":"Cattle",
		"mother":{"identifier":"F001","name":"","gender":"female","date_of_birth":null,"animal_type":"Cattle",
			"mother":{"identifier":"GP001","name":"Grandma","gender":"female","date_of_birth":null,"animal_type":"Cattle","mother":null,"father":null},
			"father":null},
		"father":null
	}`
	var tree pedigreeView
	require.NoError(t, json.Unmarshal([]byte(raw), &tree))

	var buf bytes.Buffer
	printPedigree(&buf, &tree, "", "")

	want := "C001 Calf (male, Cattle, b. 2025-03-01)\n" +
		"  dam: F001 (female, Cattle)\n" +
		"    dam: GP001 Grandma (female, Cattle)\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintAnimals(t *testing.T) {
	var buf bytes.Buffer
	printAnimals(&buf, nil)
	assert.Equal(t, "no results\n", buf.String())

	buf.Reset()
	printAnimals(&buf, []animalView{
		{ID: "1", Identifier: "C001", Gender: "male", Age: 1, IsActive: true, Relationship: "mother"},
	})
	out := buf.String()
	assert.Contains(t, out, "RELATIONSHIP")
	assert.Contains(t, out, "C001")
	assert.Contains(t, out, "mother")
}
