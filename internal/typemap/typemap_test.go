package typemap

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/contract2sdk/internal/contract"
	"github.com/mark3labs/contract2sdk/internal/target"
)

func mustTarget(t *testing.T, name string) target.Target {
	t.Helper()
	tgt, err := target.Lookup(name)
	require.NoError(t, err)
	return tgt
}

func sampleSpec(t *testing.T) *contract.Spec {
	t.Helper()
	spec, err := contract.NewSpec(nil,
		[]contract.Type{
			{Name: "com.spectralogic.s3.server.domain.Job", Elements: []contract.Element{{Name: "JobId", Type: contract.TypeRef{Name: "uuid"}}}},
			{Name: "com.spectralogic.s3.server.domain.JobStatus", EnumConstants: []string{"IN_PROGRESS"}},
		},
		[]contract.TypeMapElement{
			{ContractType: "ChecksumType", SDKType: "ChecksumType.Type", Target: "java"},
			{ContractType: "ChecksumType", SDKType: "ChecksumType", Target: "net"},
		},
	)
	require.NoError(t, err)
	return spec
}

func TestResolve_Defaults(t *testing.T) {
	t.Parallel()
	spec := sampleSpec(t)
	tests := []struct {
		target string
		ref    contract.TypeRef
		want   string
	}{
		{"go", contract.TypeRef{Name: "java.lang.String"}, "string"},
		{"go", contract.TypeRef{Name: "long"}, "int64"},
		{"go", contract.TypeRef{Name: "array", Component: "com.spectralogic.s3.server.domain.Job"}, "[]Job"},
		{"python", contract.TypeRef{Name: "array", Component: "int"}, "List[int]"},
		{"java", contract.TypeRef{Name: "array", Component: "long"}, "List<Long>"},
		{"java", contract.TypeRef{Name: "java.util.UUID"}, "UUID"},
		{"java", contract.TypeRef{Name: "ChecksumType"}, "ChecksumType.Type"},
		{"net", contract.TypeRef{Name: "com.spectralogic.util.security.ChecksumType"}, "ChecksumType"},
		{"net", contract.TypeRef{Name: "JobStatus"}, "JobStatus"},
		{"net", contract.TypeRef{Name: "date"}, "DateTime"},
	}
	for _, tt := range tests {
		tbl, err := New(mustTarget(t, tt.target), spec)
		require.NoError(t, err)
		got, err := tbl.Resolve(tt.ref)
		require.NoError(t, err, "%s %v", tt.target, tt.ref)
		assert.Equal(t, tt.want, got, "%s %v", tt.target, tt.ref)
	}
}

func TestResolve_ExplicitMappingsAreScopedToTheirTarget(t *testing.T) {
	t.Parallel()
	tbl, err := New(mustTarget(t, "go"), sampleSpec(t))
	require.NoError(t, err)
	_, err = tbl.Resolve(contract.TypeRef{Name: "ChecksumType"})

	var ue *UnmappedTypeError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "ChecksumType", ue.Type)
	assert.Equal(t, "go", ue.Target)
}

func TestResolve_ExtraMappingsApply(t *testing.T) {
	t.Parallel()
	tbl, err := New(mustTarget(t, "go"), sampleSpec(t),
		contract.TypeMapElement{ContractType: "ChecksumType", SDKType: "ds3.ChecksumType", Target: "golang"})
	require.NoError(t, err)
	got, err := tbl.Resolve(contract.TypeRef{Name: "ChecksumType"})
	require.NoError(t, err)
	assert.Equal(t, "ds3.ChecksumType", got)
	assert.Equal(t, []string{"ChecksumType"}, tbl.ExplicitTypes())
}

func TestNew_MappingConflict(t *testing.T) {
	t.Parallel()
	_, err := New(mustTarget(t, "java"), sampleSpec(t),
		contract.TypeMapElement{ContractType: "ChecksumType", SDKType: "Other", Target: "java"})
	var mc *MappingConflictError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, "ChecksumType.Type", mc.First)
	assert.Equal(t, "Other", mc.Second)

	// a repeat of the same mapping is not a conflict
	_, err = New(mustTarget(t, "java"), sampleSpec(t),
		contract.TypeMapElement{ContractType: "ChecksumType", SDKType: "ChecksumType.Type", Target: "java"})
	assert.NoError(t, err)
}

func TestResolve_Unmapped(t *testing.T) {
	t.Parallel()
	tbl, err := New(mustTarget(t, "python"), sampleSpec(t))
	require.NoError(t, err)

	_, err = tbl.Resolve(contract.TypeRef{Name: "array", Component: "com.example.Mystery"})
	var ue *UnmappedTypeError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "com.example.Mystery", ue.Type)
	assert.Equal(t, "python", ue.Target)

	err = AtLocation(err, "types[Job].elements.Thing")
	assert.Contains(t, err.Error(), "types[Job].elements.Thing")
}

func TestResolve_DeterministicUnderConcurrency(t *testing.T) {
	t.Parallel()
	tbl, err := New(mustTarget(t, "java"), sampleSpec(t))
	require.NoError(t, err)

	ref := contract.TypeRef{Name: "array", Component: "Job"}
	first, err := tbl.Resolve(ref)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = tbl.Resolve(ref)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, first, r)
	}
}

func TestResolveField_Nullable(t *testing.T) {
	t.Parallel()
	spec := sampleSpec(t)
	cases := map[string]string{"go": "*int64", "python": "Optional[int]", "java": "Long", "net": "long?"}
	for name, want := range cases {
		tbl, err := New(mustTarget(t, name), spec)
		require.NoError(t, err)
		got, err := tbl.ResolveField(contract.TypeRef{Name: "long"}, true)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)

		str, err := tbl.ResolveField(contract.TypeRef{Name: "string"}, true)
		require.NoError(t, err)
		assert.NotContains(t, str, "?", name)
	}
}

func TestTypeName_GoInitialisms(t *testing.T) {
	t.Parallel()
	tbl, err := New(mustTarget(t, "go"), nil)
	require.NoError(t, err)
	assert.Equal(t, "JobID", tbl.TypeName("com.example.JobId"))
	assert.Equal(t, "JobID", tbl.TypeName("com.example.JobID"))

	java, err := New(mustTarget(t, "java"), nil)
	require.NoError(t, err)
	assert.Equal(t, "JobId", java.TypeName("com.example.JobId"))
	assert.Equal(t, "JobID", java.TypeName("com.example.JobID"))
}
