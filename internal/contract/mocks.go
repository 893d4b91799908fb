package contract

import (
	"context"

	"github.com/petrabarus/actions-committer-coverage-stats/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// ResolveRef implements the GitClient interface.
func (m *MockGitClient) ResolveRef(ctx context.Context, repoPath string, ref string) (string, error) {
	ret := m.Called(ctx, repoPath, ref)
	return ret.String(0), ret.Error(1)
}

// ListFilesAtRef implements the GitClient interface.
func (m *MockGitClient) ListFilesAtRef(ctx context.Context, repoPath string, ref string) ([]string, error) {
	ret := m.Called(ctx, repoPath, ref)
	files, _ := ret.Get(0).([]string)
	return files, ret.Error(1)
}

// GetFileBlame implements the GitClient interface.
func (m *MockGitClient) GetFileBlame(ctx context.Context, repoPath string, ref string, path string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, ref, path)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// MockCoverageSource is a mock implementation of CoverageSource for testing.
type MockCoverageSource struct {
	mock.Mock
}

var _ CoverageSource = &MockCoverageSource{} // Compile-time check

// Files implements the CoverageSource interface.
func (m *MockCoverageSource) Files(ctx context.Context) ([]schema.FileCoverage, error) {
	ret := m.Called(ctx)
	files, _ := ret.Get(0).([]schema.FileCoverage)
	return files, ret.Error(1)
}

// MockBlameSource is a mock implementation of BlameSource for testing.
// Lookup may be called from several goroutines; mock.Mock is safe for that.
type MockBlameSource struct {
	mock.Mock
}

var _ BlameSource = &MockBlameSource{} // Compile-time check

// Lookup implements the BlameSource interface.
func (m *MockBlameSource) Lookup(ctx context.Context, path string) (*schema.FileBlame, error) {
	ret := m.Called(ctx, path)
	blame, _ := ret.Get(0).(*schema.FileBlame)
	return blame, ret.Error(1)
}
