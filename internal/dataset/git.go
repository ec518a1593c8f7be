package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"go.uber.org/zap"

	"flakeforge/internal/common"
	"flakeforge/pkg/errors"
)

// syncRepo clones the configured dataset repository into the app cache, or
// pulls it when the checkout already exists. Returns the checkout path.
func (r *Resolver) syncRepo(ctx context.Context) (string, error) {
	cacheDir := r.cacheDir
	if cacheDir == "" {
		home, err := common.AppHome()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeDatasetSyncFailed, "Failed to locate app cache directory")
		}
		cacheDir = filepath.Join(home, "repos")
	}

	localPath := filepath.Join(cacheDir, repoCacheKey(r.config.GitURL))
	r.logger.Info("Syncing dataset repository",
		zap.String("url", r.config.GitURL),
		zap.String("path", localPath),
	)

	if err := cloneOrPull(ctx, r.config.GitURL, localPath); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDatasetSyncFailed, "Failed to sync dataset repository").
			WithContext("url", r.config.GitURL).
			WithSuggestions(
				"Check the git_url in config.yaml",
				"Set GIT_USERNAME/GIT_PASSWORD or GITHUB_TOKEN for private repositories",
			)
	}

	if r.config.Branch != "" {
		if err := checkoutBranch(localPath, r.config.Branch); err != nil {
			return "", errors.Wrap(err, errors.ErrCodeDatasetSyncFailed, "Failed to checkout dataset branch").
				WithContext("branch", r.config.Branch)
		}
	}

	return localPath, nil
}

// repoCacheKey derives a stable directory name for a repository URL.
func repoCacheKey(gitURL string) string {
	sum := sha256.Sum256([]byte(gitURL))
	name := strings.TrimSuffix(filepath.Base(gitURL), ".git")
	return name + "-" + hex.EncodeToString(sum[:6])
}

func cloneOrPull(ctx context.Context, gitURL, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), common.DirPermissionNormal); err != nil {
		return err
	}

	auth := authMethod(gitURL)

	if _, err := os.Stat(filepath.Join(localPath, ".git")); err == nil {
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return err
		}
		worktree, err := repo.Worktree()
		if err != nil {
			return err
		}
		err = worktree.PullContext(ctx, &git.PullOptions{
			RemoteName: "origin",
			Auth:       auth,
		})
		if err != nil && err != git.NoErrAlreadyUpToDate {
			return err
		}
		return nil
	}

	_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
		URL:   gitURL,
		Auth:  auth,
		Depth: 1,
	})
	return err
}

func checkoutBranch(repoPath, branch string) error {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return err
	}

	branchRef := plumbing.ReferenceName("refs/heads/" + branch)
	if _, err := repo.Reference(branchRef, false); err == nil {
		return worktree.Checkout(&git.CheckoutOptions{Branch: branchRef})
	}

	// Branch only exists on the remote; create a local branch from it.
	remoteRef := plumbing.ReferenceName("refs/remotes/origin/" + branch)
	ref, err := repo.Reference(remoteRef, false)
	if err != nil {
		return err
	}
	return worktree.Checkout(&git.CheckoutOptions{
		Branch: branchRef,
		Hash:   ref.Hash(),
		Create: true,
	})
}

// authMethod picks git credentials based on the URL scheme and environment.
func authMethod(gitURL string) transport.AuthMethod {
	if strings.HasPrefix(gitURL, "git@") || strings.HasPrefix(gitURL, "ssh://") {
		sshKeyPath := filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		if _, err := os.Stat(sshKeyPath); err == nil {
			if auth, err := ssh.NewPublicKeysFromFile("git", sshKeyPath, ""); err == nil {
				return auth
			}
		}
	}

	if strings.HasPrefix(gitURL, "https://") {
		username := os.Getenv("GIT_USERNAME")
		password := os.Getenv("GIT_PASSWORD")
		if username != "" && password != "" {
			return &http.BasicAuth{Username: username, Password: password}
		}
		if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			return &http.BasicAuth{Username: "token", Password: token}
		}
	}

	return nil
}
