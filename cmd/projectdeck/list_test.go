package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/projectdeck/internal/project"
)

func sampleDeck() project.Collection {
	return project.Collection{
		{ID: "a1", Name: "Alpha", Path: "/work/alpha", Color: project.Value("#ff8800"), DevURL: project.Null()},
		{ID: "b2", Name: "Beta", Path: "/work/beta", ProductionURL: project.Value("https://beta.example.com")},
	}
}

func TestWriteList_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeList(&buf, sampleDeck(), "table"))

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "#ff8800")
	assert.Contains(t, out, "/work/beta")
}

func TestWriteList_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeList(&buf, nil, "table"))
	assert.Equal(t, "No projects in the deck.\n", buf.String())

	buf.Reset()
	require.NoError(t, writeList(&buf, nil, "json"))
	assert.JSONEq(t, "[]", buf.String())
}

func TestWriteList_JSONKeepsNulls(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeList(&buf, sampleDeck(), "json"))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0]["id"])

	v, ok := got[0]["devUrl"]
	assert.True(t, ok, "null fields are written")
	assert.Nil(t, v)
	_, ok = got[0]["stagingUrl"]
	assert.False(t, ok, "unset fields are omitted")
}

func TestWriteList_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeList(&buf, sampleDeck(), "yaml"))

	var got []listEntry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, "#ff8800", got[0].Color)
	assert.Equal(t, "https://beta.example.com", got[1].ProductionURL)
	assert.NotContains(t, buf.String(), "devUrl")
}

func TestWriteList_TOML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeList(&buf, sampleDeck(), "toml"))

	var got struct {
		Projects []listEntry `toml:"projects"`
	}
	_, err := toml.Decode(buf.String(), &got)
	require.NoError(t, err)
	require.Len(t, got.Projects, 2)
	assert.Equal(t, "b2", got.Projects[1].ID)
	assert.Contains(t, buf.String(), "[[projects]]")
}

func TestWriteList_UnknownFormat(t *testing.T) {
	err := writeList(&bytes.Buffer{}, sampleDeck(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
