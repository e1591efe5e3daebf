package registry_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threatsmith/povforge-cli/api/schemas"
	"github.com/threatsmith/povforge-cli/internal/registry"
)

func testSchema(dataset string) schemas.DatasetSchema {
	return schemas.DatasetSchema{
		Vendor:      "TestVendor",
		DatasetName: dataset,
		Category:    schemas.CategoryEndpoint,
		Fields: []schemas.DatasetField{
			{Name: "event_timestamp", Type: "datetime", Queryable: true},
			{Name: "process_name", Type: "string", Queryable: true},
		},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := registry.New()
	require.Equal(t, 0, r.Len())

	r.Register("custom_edr", testSchema("custom_edr_raw"))

	got, ok := r.Get("custom_edr")
	require.True(t, ok)
	assert.Equal(t, "custom_edr_raw", got.DatasetName)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := registry.New()
	r.Register("custom_edr", testSchema("first_raw"))
	r.Register("custom_edr", testSchema("second_raw"))

	got, ok := r.Get("custom_edr")
	require.True(t, ok)
	assert.Equal(t, "second_raw", got.DatasetName, "re-registration must overwrite the stored schema")
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Lookup_NotFound(t *testing.T) {
	r := registry.New()

	_, err := r.Lookup("ghost_source")
	require.Error(t, err)
	assert.EqualError(t, err, "schema not found: ghost_source")

	var nfe *registry.NotFoundError
	require.True(t, errors.As(err, &nfe), "error must be matchable as *NotFoundError")
	assert.Equal(t, "ghost_source", nfe.Key)
}

func TestRegistry_KeysSorted(t *testing.T) {
	r := registry.New()
	for _, key := range []string{"zeek", "aws_cloudtrail", "okta"} {
		r.Register(key, testSchema(key+"_raw"))
	}

	assert.Equal(t, []string{"aws_cloudtrail", "okta", "zeek"}, r.Keys())
}

func TestNewWithBuiltins(t *testing.T) {
	r := registry.NewWithBuiltins()

	expected := map[string]struct {
		vendor  string
		dataset string
	}{
		"windows_defender": {"Microsoft", "msft_defender_atp_raw"},
		"aws_cloudtrail":   {"Amazon Web Services", "aws_cloudtrail_raw"},
		"crowdstrike":      {"CrowdStrike", "crowdstrike_falcon_raw"},
		"kubernetes":       {"Kubernetes", "k8s_audit_raw"},
	}

	require.Equal(t, len(expected), r.Len())

	for key, want := range expected {
		t.Run(key, func(t *testing.T) {
			schema, ok := r.Get(key)
			require.True(t, ok, "built-in schema %q must be registered", key)
			assert.Equal(t, want.vendor, schema.Vendor)
			assert.Equal(t, want.dataset, schema.DatasetName)
			assert.GreaterOrEqual(t, len(schema.Fields), 8, "seed schemas carry 8-10 fields")
			assert.LessOrEqual(t, len(schema.Fields), 10)
			for i, f := range schema.Fields {
				assert.NotEmpty(t, f.Name, "field %d of %s has a name", i, key)
				assert.NotEmpty(t, f.Type, "field %d of %s has a type", i, key)
			}
		})
	}
}

func TestRegistry_ConcurrentReaders(t *testing.T) {
	r := registry.NewWithBuiltins()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				if _, err := r.Lookup("windows_defender"); err != nil {
					t.Error(err)
					return
				}
				_ = r.Keys()
			}
		}(i)
	}
	// A concurrent writer must not trip the race detector.
	r.Register("late_arrival", testSchema(fmt.Sprintf("late_%d_raw", 1)))

	for i := 0; i < 8; i++ {
		<-done
	}
	_, ok := r.Get("late_arrival")
	assert.True(t, ok)
}
