package launchpad

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FakeClient is an offline Fetcher that replays recorded Launchpad
// responses. Request URLs are matched verbatim against the fixture table;
// bug URLs with a numeric id are synthesized from a recorded template so any
// id resolves. Unrecorded URLs fail with a TransportError.
type FakeClient struct {
	responses map[string]string
}

var _ Fetcher = (*FakeClient)(nil)

// NewFakeClient creates a FakeClient seeded with the recorded fixtures: the
// nova project, two pages of its bug tasks in status New, two misbehaving
// project names, and a bug with a corrupted identity field.
func NewFakeClient() *FakeClient {
	c := &FakeClient{responses: make(map[string]string)}

	novaURL := DefaultBaseURL + "/nova"
	page1URL := novaURL + "?ws.op=searchTasks&status=New"
	page2URL := novaURL + "?status=New&ws.op=searchTasks&ws.size=2&memo=2&ws.start=2"

	c.responses[novaURL] = fakeProjectJSON(novaURL, "nova", "OpenStack Compute (nova)")
	c.responses[page1URL] = fakeTasksPageJSON(0, 4, page2URL, []string{
		fakeTaskEntryJSON(2093869, "2024-07-08T09:14:35.321746+00:00", "live migration fails when vTPM is enabled"),
		fakeTaskEntryJSON(2093879, "2024-07-08T11:02:17.845221+00:00", "instance stuck in BUILD after compute host restart"),
	})
	c.responses[page2URL] = fakeTasksPageJSON(2, 4, "", []string{
		fakeTaskEntryJSON(2066206, "2024-05-21T16:48:02.002113+00:00", "resize confirm leaks allocations on shared storage"),
		fakeTaskEntryJSON(2067081, "2024-05-27T07:30:44.156702+00:00", "scheduler crashes on malformed flavor extra_specs"),
	})

	// Nonexistent project names: the service answers one with an empty JSON
	// object and the other with a plain-text repr of an internal object.
	c.responses[DefaultBaseURL+"/zorglub"] = "{}"
	c.responses[DefaultBaseURL+"/notaproject"] = "Object: <lp.systemhomes.WebServiceApplication object at 0x7f92e7ae4730>, name: 'notaproject'"

	// Recorded response with a mangled identity key.
	corruptedURL := DefaultBugsBaseURL + "/5000"
	c.responses[corruptedURL] = strings.Replace(fakeBugJSON(corruptedURL, 5000), `"self_link"`, `"dself_link"`, 1)

	return c
}

// Fetch returns the recorded body for url.
func (c *FakeClient) Fetch(url string) (string, error) {
	if body, ok := c.responses[url]; ok {
		return body, nil
	}
	if rest, ok := strings.CutPrefix(url, DefaultBugsBaseURL+"/"); ok {
		if id, err := strconv.ParseUint(rest, 10, 32); err == nil {
			return fakeBugJSON(url, uint(id)), nil
		}
	}
	return "", &TransportError{URL: url, Err: errors.New("no recorded response")}
}

func fakeProjectJSON(selfLink, name, displayName string) string {
	return fmt.Sprintf(`{
  "self_link": %q,
  "web_link": "https://launchpad.net/%s",
  "resource_type_link": "https://api.launchpad.net/1.0/#project",
  "name": %q,
  "display_name": %q,
  "title": %q,
  "summary": "OpenStack Compute provisions and manages large networks of virtual machines.",
  "active": true
}`, selfLink, name, name, displayName, displayName)
}

func fakeTaskEntryJSON(bugID int, created, summary string) string {
	title := fmt.Sprintf("Bug #%d in OpenStack Compute (nova): %q", bugID, summary)
	return fmt.Sprintf(`{
    "self_link": "https://api.launchpad.net/1.0/nova/+bug/%[1]d",
    "web_link": "https://bugs.launchpad.net/nova/+bug/%[1]d",
    "resource_type_link": "https://api.launchpad.net/1.0/#bug_task",
    "bug_link": "https://api.launchpad.net/1.0/bugs/%[1]d",
    "milestone_link": null,
    "status": "New",
    "importance": "Undecided",
    "assignee_link": null,
    "bug_target_display_name": "OpenStack Compute (nova)",
    "bug_target_name": "nova",
    "bug_watch_link": null,
    "date_assigned": null,
    "date_created": %[2]q,
    "date_confirmed": null,
    "date_incomplete": null,
    "date_in_progress": null,
    "date_closed": null,
    "date_left_new": null,
    "date_triaged": null,
    "date_fix_committed": null,
    "date_fix_released": null,
    "date_left_closed": null,
    "date_deferred": null,
    "owner_link": "https://api.launchpad.net/1.0/~nova-reporter",
    "target_link": "https://api.launchpad.net/1.0/nova",
    "title": %[3]q,
    "related_tasks_collection_link": "https://api.launchpad.net/1.0/nova/+bug/%[1]d/related_tasks",
    "is_complete": false,
    "http_etag": "\"fixture-%[1]d\""
  }`, bugID, created, title)
}

func fakeTasksPageJSON(start, totalSize int, nextLink string, entries []string) string {
	next := "null"
	if nextLink != "" {
		next = strconv.Quote(nextLink)
	}
	return fmt.Sprintf(`{
  "start": %d,
  "total_size": %d,
  "next_collection_link": %s,
  "entries": [%s]
}`, start, totalSize, next, strings.Join(entries, ",\n"))
}

func fakeBugJSON(selfLink string, id uint) string {
	return fmt.Sprintf(`{
  "self_link": %[1]q,
  "web_link": "https://bugs.launchpad.net/bugs/%[2]d",
  "resource_type_link": "https://api.launchpad.net/1.0/#bug",
  "id": %[2]d,
  "private": false,
  "information_type": "Public",
  "name": null,
  "title": "live migration fails when vTPM is enabled",
  "description": "While live migrating an instance with an emulated vTPM device the destination compute raises InternalError and the migration is rolled back.\n\nSteps to reproduce:\n1. Boot an instance from an image with hw_tpm_model=tpm-crb\n2. Run 'openstack server migrate --live-migration <server>'\n3. Watch nova-compute logs on the destination host\n\nExpected: the migration completes and the vTPM state is transferred.\nActual: qemu aborts with 'tpm-emulator: Setting the stateblob of the TPM failed' and the instance stays on the source host.",
  "owner_link": "https://api.launchpad.net/1.0/~nova-reporter",
  "bug_tasks_collection_link": "%[1]s/bug_tasks",
  "duplicate_of_link": null,
  "date_created": "2024-07-08T09:14:35.321746+00:00",
  "activity_collection_link": "%[1]s/activity",
  "can_expire": false,
  "subscriptions_collection_link": "%[1]s/subscriptions",
  "date_last_updated": "2024-07-11T18:20:01.450129+00:00",
  "who_made_private_link": null,
  "date_made_private": null,
  "heat": 6,
  "bug_watches_collection_link": "%[1]s/bug_watches",
  "cves_collection_link": "%[1]s/cves",
  "vulnerabilities_collection_link": "%[1]s/vulnerabilities",
  "duplicates_collection_link": "%[1]s/duplicates",
  "attachments_collection_link": "%[1]s/attachments",
  "security_related": false,
  "latest_patch_uploaded": null,
  "tags": ["compute", "live-migration", "vtpm"],
  "date_last_message": "",
  "number_of_duplicates": 0,
  "message_count": 2,
  "users_affected_count": 3,
  "users_unaffected_count": 0,
  "users_affected_collection_link": "%[1]s/users_affected",
  "users_unaffected_collection_link": "%[1]s/users_unaffected",
  "users_affected_count_with_dupes": 3,
  "other_users_affected_count_with_dupes": 0,
  "users_affected_with_dupes_collection_link": "%[1]s/users_affected_with_dupes",
  "messages_collection_link": "%[1]s/messages",
  "linked_branches_collection_link": "%[1]s/linked_branches",
  "http_etag": "\"fixture-bug-%[2]d\""
}`, selfLink, id)
}
