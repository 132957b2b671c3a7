package launchpad

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is a bug task status filter. The values are the literal query-string
// tokens the searchTasks operation expects, with spaces pre-encoded as "+".
type Status string

const (
	StatusNew          Status = "New"
	StatusIncomplete   Status = "Incomplete"
	StatusOpinion      Status = "Opinion"
	StatusInvalid      Status = "Invalid"
	StatusWontFix      Status = "Won't+Fix"
	StatusConfirmed    Status = "Confirmed"
	StatusTriaged      Status = "Triaged"
	StatusInProgress   Status = "In+Progress"
	StatusDeferred     Status = "Deferred"
	StatusFixCommitted Status = "Fix+Committed"
	StatusFixReleased  Status = "Fix+Released"
)

var allStatuses = []Status{
	StatusNew, StatusIncomplete, StatusOpinion, StatusInvalid, StatusWontFix,
	StatusConfirmed, StatusTriaged, StatusInProgress, StatusDeferred,
	StatusFixCommitted, StatusFixReleased,
}

// ParseStatus maps a human-entered status name ("New", "in progress",
// "Won't Fix") to its query token.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), " ", "+")
	for _, status := range allStatuses {
		if strings.EqualFold(normalized, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Display returns the status with "+" decoded back to spaces.
func (s Status) Display() string {
	return strings.ReplaceAll(string(s), "+", " ")
}

// Timestamp wraps time.Time with Launchpad's lenient wire encoding. An
// absent key, a JSON null, an empty string, and an unparseable string all
// decode to the zero value; only a non-string JSON value is an error.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = parsed
	return nil
}

// BugTasksPage is one page of a searchTasks collection. NextCollectionLink
// is the server-issued URL of the following page; empty means this page is
// the last one.
type BugTasksPage struct {
	Start              uint      `json:"start"`
	TotalSize          uint      `json:"total_size"`
	NextCollectionLink string    `json:"next_collection_link"`
	Entries            []BugTask `json:"entries"`
}

// BugTask is one entry of a searchTasks page: the association between a bug
// and a target project, carrying the triage state.
type BugTask struct {
	SelfLink                   string    `json:"self_link"`
	WebLink                    string    `json:"web_link"`
	ResourceTypeLink           string    `json:"resource_type_link"`
	BugLink                    string    `json:"bug_link"`
	MilestoneLink              string    `json:"milestone_link"`
	Status                     string    `json:"status"`
	Importance                 string    `json:"importance"`
	AssigneeLink               string    `json:"assignee_link"`
	BugTargetDisplayName       string    `json:"bug_target_display_name"`
	BugTargetName              string    `json:"bug_target_name"`
	BugWatchLink               string    `json:"bug_watch_link"`
	DateAssigned               Timestamp `json:"date_assigned"`
	DateCreated                Timestamp `json:"date_created"`
	DateConfirmed              Timestamp `json:"date_confirmed"`
	DateIncomplete             Timestamp `json:"date_incomplete"`
	DateInProgress             Timestamp `json:"date_in_progress"`
	DateClosed                 Timestamp `json:"date_closed"`
	DateLeftNew                Timestamp `json:"date_left_new"`
	DateTriaged                Timestamp `json:"date_triaged"`
	DateFixCommitted           Timestamp `json:"date_fix_committed"`
	DateFixReleased            Timestamp `json:"date_fix_released"`
	DateLeftClosed             Timestamp `json:"date_left_closed"`
	DateDeferred               Timestamp `json:"date_deferred"`
	OwnerLink                  string    `json:"owner_link"`
	TargetLink                 string    `json:"target_link"`
	Title                      string    `json:"title"`
	RelatedTasksCollectionLink string    `json:"related_tasks_collection_link"`
	IsComplete                 bool      `json:"is_complete"`
	HTTPETag                   string    `json:"http_etag"`
}

// Bug is the full record for a single bug fetched by id.
type Bug struct {
	SelfLink                             string    `json:"self_link"`
	WebLink                              string    `json:"web_link"`
	ResourceTypeLink                     string    `json:"resource_type_link"`
	ID                                   uint      `json:"id"`
	Private                              bool      `json:"private"`
	InformationType                      string    `json:"information_type"`
	Name                                 string    `json:"name"`
	Title                                string    `json:"title"`
	Description                          string    `json:"description"`
	OwnerLink                            string    `json:"owner_link"`
	BugTasksCollectionLink               string    `json:"bug_tasks_collection_link"`
	DuplicateOfLink                      string    `json:"duplicate_of_link"`
	DateCreated                          Timestamp `json:"date_created"`
	ActivityCollectionLink               string    `json:"activity_collection_link"`
	CanExpire                            bool      `json:"can_expire"`
	SubscriptionsCollectionLink          string    `json:"subscriptions_collection_link"`
	DateLastUpdated                      Timestamp `json:"date_last_updated"`
	WhoMadePrivateLink                   string    `json:"who_made_private_link"`
	DateMadePrivate                      Timestamp `json:"date_made_private"`
	Heat                                 uint      `json:"heat"`
	BugWatchesCollectionLink             string    `json:"bug_watches_collection_link"`
	CVEsCollectionLink                   string    `json:"cves_collection_link"`
	VulnerabilitiesCollectionLink        string    `json:"vulnerabilities_collection_link"`
	DuplicatesCollectionLink             string    `json:"duplicates_collection_link"`
	AttachmentsCollectionLink            string    `json:"attachments_collection_link"`
	SecurityRelated                      bool      `json:"security_related"`
	LatestPatchUploaded                  string    `json:"latest_patch_uploaded"`
	Tags                                 []string  `json:"tags"`
	DateLastMessage                      Timestamp `json:"date_last_message"`
	NumberOfDuplicates                   uint      `json:"number_of_duplicates"`
	MessageCount                         uint      `json:"message_count"`
	UsersAffectedCount                   uint      `json:"users_affected_count"`
	UsersUnaffectedCount                 uint      `json:"users_unaffected_count"`
	UsersAffectedCollectionLink          string    `json:"users_affected_collection_link"`
	UsersUnaffectedCollectionLink        string    `json:"users_unaffected_collection_link"`
	UsersAffectedCountWithDupes          uint      `json:"users_affected_count_with_dupes"`
	OtherUsersAffectedCountWithDupes     uint      `json:"other_users_affected_count_with_dupes"`
	UsersAffectedWithDupesCollectionLink string    `json:"users_affected_with_dupes_collection_link"`
	MessagesCollectionLink               string    `json:"messages_collection_link"`
	LinkedBranchesCollectionLink         string    `json:"linked_branches_collection_link"`
	HTTPETag                             string    `json:"http_etag"`
}
