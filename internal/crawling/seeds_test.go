package crawling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSeedQueue_AppendsGuessesOnRegistrableDomain(t *testing.T) {
	queue, err := BuildSeedQueue([]string{"https://shop.acme.co.uk/products"}, []string{"/contact", "/about"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://shop.acme.co.uk/products",
		"https://acme.co.uk/contact",
		"https://acme.co.uk/about",
	}, queue)
}

func TestBuildSeedQueue_DefaultPaths(t *testing.T) {
	queue, err := BuildSeedQueue([]string{"https://example-biz.test"}, DefaultContactPaths)
	require.NoError(t, err)
	require.Len(t, queue, 1+len(DefaultContactPaths))
	assert.Equal(t, "https://example-biz.test", queue[0])
	assert.Equal(t, "https://example-biz.test/contacts", queue[1])
	assert.Equal(t, "https://example-biz.test/join-us", queue[len(queue)-1])
}

func TestBuildSeedQueue_Deduplicates(t *testing.T) {
	queue, err := BuildSeedQueue([]string{
		"https://acme.com/contact/",
		"https://ACME.com/contact#form",
		"https://acme.com",
	}, []string{"/contact", "/about"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://acme.com/contact/",
		"https://acme.com",
		"https://acme.com/about",
	}, queue)
}

func TestBuildSeedQueue_KeepsPortAndIP(t *testing.T) {
	queue, err := BuildSeedQueue([]string{"http://127.0.0.1:8080/"}, []string{"/contact"})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://127.0.0.1:8080/", "http://127.0.0.1:8080/contact"}, queue)
}

func TestBuildSeedQueue_SkipsInvalidSeeds(t *testing.T) {
	queue, err := BuildSeedQueue([]string{"not a url", "ftp://files.acme.com", "https://www.acme.com"}, []string{"/contact"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.acme.com", "https://acme.com/contact"}, queue)
}

func TestBuildSeedQueue_EmptyInput(t *testing.T) {
	_, err := BuildSeedQueue(nil, DefaultContactPaths)
	var emptyErr *EmptyInputError
	require.ErrorAs(t, err, &emptyErr)
	assert.Contains(t, err.Error(), "no seed URLs provided")

	_, err = BuildSeedQueue([]string{"", "relative/path"}, DefaultContactPaths)
	require.ErrorAs(t, err, &emptyErr)
	assert.Contains(t, err.Error(), "no valid seed URLs provided")
}

func TestRegistrableHost(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"www.example.com", "example.com"},
		{"a.b.example.co.uk", "example.co.uk"},
		{"Example.COM:8443", "example.com:8443"},
		{"localhost", "localhost"},
		{"localhost:3000", "localhost:3000"},
		{"192.168.1.10", "192.168.1.10"},
		{"[::1]:9000", "[::1]:9000"},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, RegistrableHost(tt.host))
		})
	}
}
