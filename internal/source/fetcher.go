package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
	"github.com/sirupsen/logrus"
)

const defaultUserAgent = "launchpad/1.0"

// Options configures a Fetcher. The zero value talks to api.github.com
// anonymously with http.DefaultClient.
type Options struct {
	// BaseURL overrides the REST endpoint (tests, GitHub Enterprise).
	BaseURL    string
	Token      string
	UserAgent  string
	HTTPClient *http.Client
}

// Fetcher reads repository metadata, the file tree and selected file
// contents. It performs no writes and no retries.
type Fetcher struct {
	gh *github.Client
}

func NewFetcher(opts Options) (*Fetcher, error) {
	gh := github.NewClient(opts.HTTPClient)
	if tok := strings.TrimSpace(opts.Token); tok != "" {
		gh = gh.WithAuthToken(tok)
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("source: invalid base url: %w", err)
		}
		gh.BaseURL = u
	}
	gh.UserAgent = defaultUserAgent
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		gh.UserAgent = ua
	}
	return &Fetcher{gh: gh}, nil
}

// Fetch builds the repository context. Only the metadata call can fail the
// run; tree and content failures degrade to empty values.
func (f *Fetcher) Fetch(ctx context.Context, ref Reference) (*Context, error) {
	log := logrus.WithField("repo", ref.String())

	meta, _, err := f.gh.Repositories.Get(ctx, ref.Owner, ref.Repo)
	if err != nil {
		return nil, classify(ref, err)
	}
	branch := meta.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}
	log = log.WithField("branch", branch)
	log.Info("repository metadata fetched")

	files := f.listFiles(ctx, ref, branch, log)
	found := scanFiles(files)

	out := &Context{
		Ref:           ref,
		DefaultBranch: branch,
		Files:         files,
		FileTree:      buildFileTree(files),
		ConfigPath:    found.configPath,
		HasConfig:     found.configPath != "",
		HasYarnLock:   found.hasYarnLock,
		HasPnpmLock:   found.hasPnpmLock,
	}
	if out.HasConfig {
		text, err := f.readText(ctx, ref, branch, found.configPath)
		if err != nil {
			log.WithError(err).WithField("path", found.configPath).Warn("platform config content unreadable")
		}
		out.ExistingConfig = text
	}
	if found.packagePath != "" {
		text, err := f.readText(ctx, ref, branch, found.packagePath)
		if err != nil {
			log.WithError(err).WithField("path", found.packagePath).Warn("package manifest unreadable")
		}
		out.PackageJSON = text
	}
	log.WithFields(logrus.Fields{
		"files":      len(files),
		"has_config": out.HasConfig,
	}).Debug("repository context built")
	return out, nil
}

// listFiles prefers the recursive tree and falls back to the root listing.
func (f *Fetcher) listFiles(ctx context.Context, ref Reference, branch string, log *logrus.Entry) []string {
	tree, _, err := f.gh.Git.GetTree(ctx, ref.Owner, ref.Repo, branch, true)
	if err == nil && tree != nil {
		paths := make([]string, 0, len(tree.Entries))
		for _, e := range tree.Entries {
			if e.GetType() == "blob" {
				paths = append(paths, e.GetPath())
			}
		}
		return paths
	}
	log.WithError(err).Warn("tree listing failed, falling back to root contents")

	_, dir, _, err := f.gh.Repositories.GetContents(ctx, ref.Owner, ref.Repo, "", &github.RepositoryContentGetOptions{Ref: branch})
	if err != nil {
		log.WithError(err).Warn("root contents listing failed, continuing with empty file list")
		return []string{}
	}
	paths := make([]string, 0, len(dir))
	for _, c := range dir {
		if p := c.GetPath(); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func (f *Fetcher) readText(ctx context.Context, ref Reference, branch, path string) (string, error) {
	file, _, _, err := f.gh.Repositories.GetContents(ctx, ref.Owner, ref.Repo, path, &github.RepositoryContentGetOptions{Ref: branch})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrContentDecode, path, classify(ref, err))
	}
	if file == nil {
		return "", fmt.Errorf("%w: %s is not a file", ErrContentDecode, path)
	}
	text, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrContentDecode, path, err)
	}
	return text, nil
}
