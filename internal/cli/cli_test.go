package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/contract2sdk/internal/naming"
)

const sampleContract = `
requests:
  - name: GetJobsRequestHandler
    classification: spectrads3
    httpVerb: GET
    path: /_rest_/job
    optionalParams: [{name: bucketId, type: string}]
    response: {type: "array<Job>"}
  - name: DeleteBucketRequestHandler
    httpVerb: DELETE
    path: /{bucketName}
    requiredParams: [{name: bucketName, type: string}]
    response: {type: null, codes: [204]}
types:
  - name: com.spectralogic.s3.server.domain.Job
    fields:
      - {name: JobId, type: uuid}
      - {name: Checksum, type: ChecksumType}
`

const checksumTypeMap = `
typeMaps:
  - {contractType: ChecksumType, sdkType: string, targetLanguage: go}
  - {contractType: ChecksumType, sdkType: str, targetLanguage: python}
`

const collidingContract = `
requests:
  - name: GetJobIdRequestHandler
    httpVerb: GET
    path: /job
    response: {type: com.example.a.JobId}
types:
  - name: com.example.a.JobId
    fields: [{name: Value, type: string}]
  - name: com.example.b.JobID
    fields: [{name: Value, type: string}]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

// execute runs the root command with an isolated env file and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// captureConfig swaps the generate runner for one that records the resolved
// config. Callers must not be parallel.
func captureConfig(t *testing.T) **GenerateConfig {
	t.Helper()
	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })
	return &captured
}

func TestGenerateConfigFromFlags(t *testing.T) {
	captured := captureConfig(t)

	_, err := execute(t,
		"--verbose",
		"generate",
		"--input", "contract.xml",
		"--format", "XML",
		"--targets", "go, py,go",
		"--out", "./build",
		"--type-map", "a.yaml,b.yaml",
		"--docs", " docs.json ",
		"--package-name", "storage",
		"--override", "Bucket=Buckets",
		"--include-internal",
		"--prune-types",
		"--dump-model",
		"--concurrency", "2",
		"--dry-run",
		"--force",
	)
	require.NoError(t, err)
	require.NotNil(t, *captured)
	cfg := *captured

	assert.Equal(t, "contract.xml", cfg.Input)
	assert.Equal(t, "xml", cfg.Format)
	assert.Equal(t, []string{"go", "py"}, cfg.Targets)
	assert.Equal(t, "./build", cfg.Out)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, cfg.TypeMaps)
	assert.Equal(t, "docs.json", cfg.Docs)
	assert.Equal(t, "storage", cfg.PackageName)
	assert.Equal(t, map[string]string{"Bucket": "Buckets"}, cfg.Overrides)
	assert.True(t, cfg.IncludeInternal)
	assert.True(t, cfg.PruneTypes)
	assert.True(t, cfg.DumpModel)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Force)
	assert.True(t, cfg.Verbose)
	assert.NotNil(t, cfg.Logger)
}

func TestGenerateConfig_Defaults(t *testing.T) {
	captured := captureConfig(t)

	_, err := execute(t, "generate", "--input", "contract.xml")
	require.NoError(t, err)
	cfg := *captured
	assert.Equal(t, []string{"go"}, cfg.Targets)
	assert.Equal(t, "sdk", cfg.Out)
	assert.False(t, cfg.Force)
}

func TestGenerateConfig_Precedence(t *testing.T) {
	captured := captureConfig(t)
	dir := t.TempDir()

	envFile := writeFile(t, dir, "test.env", strings.Join([]string{
		"CONTRACT2SDK_INPUT=env.xml",
		"CONTRACT2SDK_TARGETS=java,net",
		"CONTRACT2SDK_OUT=env-out",
		"CONTRACT2SDK_PACKAGE_NAME=envpkg",
		"CONTRACT2SDK_FORCE=true",
		"UNRELATED=1",
	}, "\n"))
	configPath := writeFile(t, dir, "config.yaml", strings.Join([]string{
		"input: config.xml",
		"out: config-out",
		"overrides: {Tape: Tapes}",
		"dry-run: true",
	}, "\n"))

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--env-file", envFile, "--config", configPath, "generate", "--out", "flag-out"})
	require.NoError(t, root.Execute())

	cfg := *captured
	require.NotNil(t, cfg)
	assert.Equal(t, "config.xml", cfg.Input, "config overrides env")
	assert.Equal(t, "flag-out", cfg.Out, "flags override config")
	assert.Equal(t, []string{"java", "net"}, cfg.Targets, "env fills what config leaves unset")
	assert.Equal(t, "envpkg", cfg.PackageName)
	assert.True(t, cfg.Force)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, map[string]string{"Tape": "Tapes"}, cfg.Overrides)
	assert.Equal(t, configPath, cfg.ConfigPath)
}

func TestGenerateConfig_ProcessEnvBeatsEnvFile(t *testing.T) {
	captured := captureConfig(t)
	dir := t.TempDir()
	envFile := writeFile(t, dir, "test.env", "CONTRACT2SDK_INPUT=file.xml\n")
	t.Setenv("CONTRACT2SDK_INPUT", "process.xml")

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--env-file", envFile, "generate"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "process.xml", (*captured).Input)
}

func TestGenerateConfig_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	unknownField := writeFile(t, dir, "unknown.yaml", "input: a.xml\nunknownField: 1\n")
	badBool := writeFile(t, dir, "badbool.yaml", "input: a.xml\nforce: maybe\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", []string{"generate"}, "--input is required"},
		{"unknown target", []string{"generate", "--input", "a.xml", "--targets", "cobol"}, `unknown target "cobol"`},
		{"bad format", []string{"generate", "--input", "a.xml", "--format", "toml"}, "unknown contract format"},
		{"negative concurrency", []string{"generate", "--input", "a.xml", "--concurrency", "-1"}, "must not be negative"},
		{"unknown config field", []string{"--config", unknownField, "generate"}, "unknown field"},
		{"bad config value", []string{"--config", badBool, "generate"}, "invalid boolean"},
		{"missing config", []string{"--config", filepath.Join(dir, "nope.yaml"), "generate"}, "read config file"},
		{"unknown flag", []string{"generate", "--unknown-flag"}, "unknown flag"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUsage)
			assert.Equal(t, 2, ExitCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUnknownFlag_ShowsUsage(t *testing.T) {
	t.Parallel()
	_, err := execute(t, "generate", "--unknown-flag")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Usage:")
}

func TestGenerate_WritesEachTarget(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := writeFile(t, dir, "contract.yaml", sampleContract)
	typeMap := writeFile(t, dir, "typemap.yaml", checksumTypeMap)
	out := filepath.Join(dir, "sdk")

	_, err := execute(t, "generate", "--input", input, "--targets", "go,python", "--type-map", typeMap, "--out", out)
	require.NoError(t, err)

	goSrc, err := os.ReadFile(filepath.Join(out, "go", "ds3", "get_jobs_spectra_s3_request.go"))
	require.NoError(t, err)
	assert.Contains(t, string(goSrc), "type GetJobsSpectraS3Request struct")

	model, err := os.ReadFile(filepath.Join(out, "go", "ds3", "job.go"))
	require.NoError(t, err)
	assert.Contains(t, string(model), "Checksum string")

	_, err = os.Stat(filepath.Join(out, "python", "ds3", "requests.py"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "java"))
	assert.True(t, os.IsNotExist(err))

	// a second run into the same tree needs --force
	_, err = execute(t, "generate", "--input", input, "--targets", "go", "--type-map", typeMap, "--out", out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "not empty")

	_, err = execute(t, "generate", "--input", input, "--targets", "go", "--type-map", typeMap, "--out", out, "--force")
	assert.NoError(t, err)
}

func TestGenerate_DocsReachGeneratedCode(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := writeFile(t, dir, "contract.yaml", sampleContract)
	typeMap := writeFile(t, dir, "typemap.yaml", checksumTypeMap)
	docs := writeFile(t, dir, "docs.json", `{
  "requestDescriptors": [
    {"name": "GetJobsRequestHandler", "classification": "spectrads3", "description": "Lists every active job."}
  ],
  "paramDescriptors": [
    {"name": "bucketId", "description": "Only jobs of this bucket."}
  ]
}`)
	out := filepath.Join(dir, "sdk")

	_, err := execute(t, "generate", "--input", input, "--type-map", typeMap, "--docs", docs, "--out", out)
	require.NoError(t, err)
	src, err := os.ReadFile(filepath.Join(out, "go", "ds3", "get_jobs_spectra_s3_request.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "// Lists every active job.")
	assert.Contains(t, string(src), "// Only jobs of this bucket.")

	_, err = execute(t, "generate", "--input", input, "--type-map", typeMap, "--docs", filepath.Join(dir, "missing.json"), "--out", filepath.Join(dir, "other"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load docs")
}

func TestGenerate_DryRunWritesNothing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := writeFile(t, dir, "contract.yaml", sampleContract)
	typeMap := writeFile(t, dir, "typemap.yaml", checksumTypeMap)
	out := filepath.Join(dir, "sdk")

	stdout, err := execute(t, "generate", "--input", input, "--type-map", typeMap, "--out", out, "--dry-run", "--dump-model")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Planned writes to")
	assert.Contains(t, stdout, "- ds3/job.go")
	assert.Contains(t, stdout, "GetJobsSpectraS3Request", "model dump is printed")
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestGenerate_FailedTargetDoesNotBlockOthers(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := writeFile(t, dir, "contract.yaml", collidingContract)
	out := filepath.Join(dir, "sdk")

	_, err := execute(t, "generate", "--input", input, "--targets", "go,java", "--out", out)
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
	assert.Contains(t, err.Error(), "target go")

	var nc *naming.NormalizationConflictError
	require.True(t, errors.As(err, &nc))
	assert.Equal(t, "JobID", nc.Name)

	_, err = os.Stat(filepath.Join(out, "go"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(out, "java", "src", "main", "java", "com", "spectralogic", "ds3client", "models", "JobId.java"))
	assert.NoError(t, err)
}

func TestGenerate_UnmappedTypeFailsTarget(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := writeFile(t, dir, "contract.yaml", sampleContract)

	_, err := execute(t, "generate", "--input", input, "--out", filepath.Join(dir, "sdk"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ChecksumType")
	assert.Equal(t, 1, ExitCode(err))
}

func TestGenerate_ContractErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	broken := writeFile(t, dir, "broken.xml", "<Data><Contract>")

	_, err := execute(t, "generate", "--input", broken, "--out", filepath.Join(dir, "sdk"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load contract")
	assert.Equal(t, 1, ExitCode(err))

	_, err = execute(t, "generate", "--input", filepath.Join(dir, "missing.xml"), "--out", filepath.Join(dir, "sdk"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load contract")

	_, err = execute(t, "generate", "--input", broken, "--type-map", filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
}

func TestInit_WritesSampleConfig(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	stdout, err := execute(t, "init", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote sample config")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "contract2sdk configuration")

	// every documented key is accepted by the config loader
	var cfg GenerateConfig
	for _, line := range strings.Split(string(data), "\n") {
		key, _, ok := strings.Cut(strings.TrimPrefix(line, "# "), ":")
		if !ok || strings.Contains(key, " ") || key == "" || strings.HasPrefix(line, "#   ") {
			continue
		}
		known, _ := cfg.apply(key, nil)
		assert.True(t, known, key)
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "config.yaml", "x")

	_, err := execute(t, "init", "--out", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)

	_, err = execute(t, "init", "--out", path, "--force")
	require.NoError(t, err)
}

func TestTargets_ListsBuiltins(t *testing.T) {
	t.Parallel()
	stdout, err := execute(t, "targets")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"go (aliases: golang)",
		"java",
		"net (aliases: csharp, c#, dotnet, .net)",
		"python (aliases: py)",
	}, strings.Split(strings.TrimSpace(stdout), "\n"))
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(newUsageError("bad")))
	assert.Equal(t, 2, ExitCode(errors.Join(errors.New("x"), newUsageError("bad"))))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
}

func TestValueAsStringMap(t *testing.T) {
	t.Parallel()
	m, err := valueAsStringMap("Job=Jobs, Tape = Tapes")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Job": "Jobs", "Tape": "Tapes"}, m)

	_, err = valueAsStringMap("Job")
	assert.Error(t, err)
	_, err = valueAsStringMap(3)
	assert.Error(t, err)
}
