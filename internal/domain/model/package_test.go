package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackageContentEntry_FileName(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{source: "nsd.yml", want: "nsd.yml"},
		{source: "Definitions/nsd.yml", want: "nsd.yml"},
		{source: "Definitions/vnfs/cirros/vnfd.yml", want: "vnfd.yml"},
		{source: "Definitions/icons/", want: "icons"},
		{source: "  Definitions/nsd.yml  ", want: "nsd.yml"},
		{source: "", want: ""},
		{source: "/", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, PackageContentEntry{Source: tt.source}.FileName())
		})
	}
}

func TestPackageContentEntry_MediaType(t *testing.T) {
	assert.Equal(t, "application/vnd.5gtango.nsd", PackageContentEntry{ContentType: "application/vnd.5gtango.nsd"}.MediaType())
	assert.Equal(t, DefaultFileContentType, PackageContentEntry{ContentType: "  "}.MediaType())
}

func TestPackageDescriptor_FindContent(t *testing.T) {
	var missing *PackageDescriptor
	_, ok := missing.FindContent("c-1")
	assert.False(t, ok)

	pd := &PackageDescriptor{PackageContent: []PackageContentEntry{
		{UUID: "c-1", Source: "Definitions/nsd.yml"},
		{UUID: "c-2", Source: "Definitions/vnfd.yml"},
		{UUID: "c-1", Source: "Definitions/duplicate.yml"},
	}}

	entry, ok := pd.FindContent("c-1")
	assert.True(t, ok)
	assert.Equal(t, "Definitions/nsd.yml", entry.Source)

	_, ok = pd.FindContent("c-9")
	assert.False(t, ok)
}
