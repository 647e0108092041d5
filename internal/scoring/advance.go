package scoring

import (
	"strings"

	"github.com/aretw0/qualifica/pkg/domain"
)

// Branch identifies which path of the state machine produced a Result.
type Branch int

const (
	BranchInvalid Branch = iota // missing identifiers
	BranchReset                 // empty answer restarted the conversation
	BranchScored                // an answer was graded against a question
	BranchReplay                // the session was already done (or past the catalog end)
)

func (b Branch) String() string {
	switch b {
	case BranchInvalid:
		return "invalid"
	case BranchReset:
		return "reset"
	case BranchScored:
		return "scored"
	case BranchReplay:
		return "replay"
	default:
		return "unknown"
	}
}

// Evaluation is a Result plus the details of how it was reached.
// Question, Bucket and Points are only set for BranchScored.
type Evaluation struct {
	Result      domain.Result
	Branch      Branch
	CatalogSize int
	Step        int
	Question    domain.Question
	Bucket      domain.Bucket
	Points      int
}

// NormalizeConversationID keeps only the part of a channel-qualified id before the first "@".
func NormalizeConversationID(id string) string {
	if i := strings.IndexByte(id, '@'); i >= 0 {
		id = id[:i]
	}
	return strings.TrimSpace(id)
}

// CheckIdentifiers returns the validation error Evaluate would report for these
// identifiers, or nil when both are usable.
func CheckIdentifiers(tenantID, conversationID string) *domain.ValidationError {
	switch {
	case strings.TrimSpace(tenantID) == "":
		return &domain.ValidationError{Field: "tenantId", Message: "tenantId is required"}
	case strings.Contains(tenantID, ":"):
		return &domain.ValidationError{Field: "tenantId", Message: "tenantId must not contain ':'"}
	case NormalizeConversationID(conversationID) == "":
		return &domain.ValidationError{Field: "conversationId", Message: "conversationId is required"}
	}
	return nil
}

// Advance processes one answer and returns the Result to hand back to the caller.
func Advance(req domain.Request) domain.Result {
	return Evaluate(req).Result
}

// Evaluate runs the state machine for one request.
func Evaluate(req domain.Request) Evaluation {
	res := domain.Result{
		TenantID:       req.TenantID,
		ConversationID: NormalizeConversationID(req.ConversationID),
		Session:        domain.NewSession(),
	}

	if verr := CheckIdentifiers(req.TenantID, req.ConversationID); verr != nil {
		res.Outcome = domain.Invalid(verr.Message)
		return Evaluation{Result: res, Branch: BranchInvalid}
	}

	catalog := SortCatalog(req.Catalog)

	// An empty answer always restarts, whatever the prior session says.
	if strings.TrimSpace(req.RawAnswer) == "" {
		if len(catalog) == 0 {
			res.Session.Status = domain.StatusDone
			res.Outcome = domain.Completed(domain.Cold, 0)
		} else {
			res.Outcome = domain.AskNext(catalog[0].Text)
		}
		return Evaluation{Result: res, Branch: BranchReset, CatalogSize: len(catalog)}
	}

	prior := domain.NewSession()
	if req.PriorSession != nil {
		prior = *req.PriorSession
	}
	thresholds := ThresholdsFor(catalog)

	if prior.Done() || prior.CurrentStep < 0 || prior.CurrentStep >= len(catalog) {
		res.Session = domain.Session{
			CurrentStep: prior.CurrentStep,
			ScoreTotal:  prior.ScoreTotal,
			Status:      domain.StatusDone,
		}
		res.Outcome = domain.Completed(ClassifyScore(prior.ScoreTotal, thresholds), prior.ScoreTotal)
		return Evaluation{Result: res, Branch: BranchReplay, CatalogSize: len(catalog), Step: prior.CurrentStep}
	}

	q := catalog[prior.CurrentStep]
	bucket := Classify(req.RawAnswer, q)
	points := Points(bucket, q.Weight)

	next := domain.Session{
		CurrentStep: prior.CurrentStep + 1,
		ScoreTotal:  prior.ScoreTotal + points,
		Status:      domain.StatusInProgress,
	}
	if next.CurrentStep < len(catalog) {
		res.Outcome = domain.AskNext(catalog[next.CurrentStep].Text)
	} else {
		next.Status = domain.StatusDone
		res.Outcome = domain.Completed(ClassifyScore(next.ScoreTotal, thresholds), next.ScoreTotal)
	}
	res.Session = next

	return Evaluation{
		Result:      res,
		Branch:      BranchScored,
		CatalogSize: len(catalog),
		Step:        prior.CurrentStep,
		Question:    q,
		Bucket:      bucket,
		Points:      points,
	}
}
