package launchpad

import (
	"encoding/json"
	"errors"
	"fmt"
)

// maxPages bounds a pagination walk. The server controls the cursor chain,
// and a misbehaving server issuing a cyclic chain would otherwise never
// terminate.
const maxPages = 1000

// CheckProject fetches the project record for name and verifies the service
// recognizes it. The service answers bad names in two shapes, a non-JSON
// error body or well-formed JSON whose self_link is not the requested URL;
// both classify as InvalidProjectError. Valid JSON that fails decoding for
// any other reason is a DeserializationError.
func CheckProject(f Fetcher, baseURL, name string) error {
	url := baseURL + "/" + name
	body, err := f.Fetch(url)
	if err != nil {
		return err
	}

	var project struct {
		SelfLink string `json:"self_link"`
	}
	if err := json.Unmarshal([]byte(body), &project); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return &InvalidProjectError{Name: name}
		}
		return &DeserializationError{Err: err}
	}
	if project.SelfLink != url {
		return &InvalidProjectError{Name: name}
	}
	return nil
}

// FetchProjectBugTasks returns every bug task the searchTasks operation
// reports for project, following the server's next_collection_link chain
// until a page arrives without one. An empty status fetches tasks in all
// states. The project is validated first, so an invalid name fails before
// any search request is issued.
//
// Entries are accumulated in page order, exactly as the server returns
// them: no re-sorting and no deduplication across pages.
func FetchProjectBugTasks(f Fetcher, baseURL, project string, status Status) ([]BugTask, error) {
	if err := CheckProject(f, baseURL, project); err != nil {
		return nil, err
	}

	// Query parameters are concatenated by hand with ws.op first. The
	// status tokens are pre-encoded and the offline client matches request
	// URLs verbatim.
	url := baseURL + "/" + project + "?ws.op=searchTasks"
	if status != "" {
		url += "&status=" + string(status)
	}

	var tasks []BugTask
	for page := 0; ; page++ {
		if page == maxPages {
			return nil, fmt.Errorf("fetch bug tasks for %q: no terminal page after %d pages", project, maxPages)
		}

		body, err := f.Fetch(url)
		if err != nil {
			return nil, err
		}

		var current BugTasksPage
		if err := json.Unmarshal([]byte(body), &current); err != nil {
			return nil, &DeserializationError{Err: err}
		}

		if tasks == nil {
			tasks = make([]BugTask, 0, current.TotalSize)
		}
		tasks = append(tasks, current.Entries...)

		if current.NextCollectionLink == "" {
			return tasks, nil
		}
		// The next page URL is server-issued and fetched verbatim.
		url = current.NextCollectionLink
	}
}

// FetchBug fetches the full record for one bug by id. There is no project
// validation step on this path; any decode failure is a
// DeserializationError.
func FetchBug(f Fetcher, bugsBaseURL string, id uint) (Bug, error) {
	url := fmt.Sprintf("%s/%d", bugsBaseURL, id)
	body, err := f.Fetch(url)
	if err != nil {
		return Bug{}, err
	}

	var bug Bug
	if err := json.Unmarshal([]byte(body), &bug); err != nil {
		return Bug{}, &DeserializationError{Err: err}
	}
	// encoding/json leaves absent keys at their zero value, so the identity
	// field has to be checked after decoding.
	if bug.SelfLink == "" {
		return Bug{}, &DeserializationError{Err: errors.New("missing field self_link")}
	}
	return bug, nil
}
