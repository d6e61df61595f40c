package nvd

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/tamcore/exploitscout/internal/model"
)

const (
	// repositoryNamespace prefixes every key; keys are sent as-is as API paths
	repositoryNamespace = "repos"

	exploitTag   = "Exploit"
	codeHostHint = "github"
)

// repositorySegment is the character set GitHub allows in owner and
// repository names. Segments are matched in escaped form, so any
// percent-escape is rejected.
var repositorySegment = regexp.MustCompile(`^[a-z0-9._-]+$`)

// ExtractExploitRepositories collects the canonical keys of code-host
// references tagged as exploits. References that do not name an owner and
// repository are skipped.
func ExtractExploitRepositories(refs []Reference, logger *zap.Logger) model.KeySet {
	keys := model.NewKeySet()

	for _, ref := range refs {
		if !isExploitReference(ref) {
			continue
		}

		key, err := RepositoryKey(ref.URL)
		if err != nil {
			if logger != nil {
				logger.Debug("skipping exploit reference", zap.String("url", ref.URL), zap.Error(err))
			}
			continue
		}
		keys.Add(key)
	}

	return keys
}

func isExploitReference(ref Reference) bool {
	return strings.Contains(ref.URL, codeHostHint) && slices.Contains(ref.Tags, exploitTag)
}

// RepositoryKey reduces a reference URL to repos/<owner>/<name>, dropping the
// scheme, host and anything after the repository name. Owner and name are
// lower-cased and must not carry characters that change the request path.
func RepositoryKey(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errMalformedReference, err)
	}

	segments := strings.FieldsFunc(u.EscapedPath(), func(r rune) bool { return r == '/' })
	if u.Host == "" && len(segments) > 0 {
		// no scheme, so the host is still the first path segment
		segments = segments[1:]
	}
	if len(segments) < 2 {
		return "", fmt.Errorf("%w: %q has no owner and repository", errMalformedReference, rawURL)
	}

	// owner and repository names are case-insensitive on GitHub
	owner := strings.ToLower(segments[0])
	name := strings.TrimSuffix(strings.ToLower(segments[1]), ".git")
	if name == "" {
		return "", fmt.Errorf("%w: %q has an empty repository name", errMalformedReference, rawURL)
	}
	for _, segment := range []string{owner, name} {
		if segment == "." || segment == ".." || !repositorySegment.MatchString(segment) {
			return "", fmt.Errorf("%w: %q is not a valid repository path segment", errMalformedReference, segment)
		}
	}

	return repositoryNamespace + "/" + owner + "/" + name, nil
}
