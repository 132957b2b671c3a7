package launchpad

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// mapFetcher serves canned bodies keyed by exact request URL.
type mapFetcher map[string]string

func (m mapFetcher) Fetch(url string) (string, error) {
	body, ok := m[url]
	if !ok {
		return "", &TransportError{URL: url, Err: errors.New("unexpected URL")}
	}
	return body, nil
}

// recordingFetcher wraps a Fetcher and records every requested URL in order.
type recordingFetcher struct {
	inner Fetcher
	urls  []string
}

func (r *recordingFetcher) Fetch(url string) (string, error) {
	r.urls = append(r.urls, url)
	return r.inner.Fetch(url)
}

func projectJSON(selfLink string) string {
	return fmt.Sprintf(`{"self_link": %q, "name": "whatever"}`, selfLink)
}

func pageJSON(start, totalSize int, nextLink string, bugLinks ...string) string {
	entries := make([]string, len(bugLinks))
	for i, link := range bugLinks {
		entries[i] = fmt.Sprintf(`{"bug_link": %q, "status": "New", "title": "task"}`, link)
	}
	next := "null"
	if nextLink != "" {
		next = fmt.Sprintf("%q", nextLink)
	}
	return fmt.Sprintf(`{"start": %d, "total_size": %d, "next_collection_link": %s, "entries": [%s]}`,
		start, totalSize, next, strings.Join(entries, ","))
}

func TestCheckProject(t *testing.T) {
	base := "https://lp.test/1.0"

	t.Run("matching self_link passes", func(t *testing.T) {
		f := mapFetcher{base + "/nova": projectJSON(base + "/nova")}
		if err := CheckProject(f, base, "nova"); err != nil {
			t.Errorf("CheckProject() error = %v, want nil", err)
		}
	})

	t.Run("empty object is an invalid project", func(t *testing.T) {
		f := mapFetcher{base + "/zorglub": "{}"}
		err := CheckProject(f, base, "zorglub")
		var invalid *InvalidProjectError
		if !errors.As(err, &invalid) {
			t.Fatalf("CheckProject() error = %v, want InvalidProjectError", err)
		}
		if invalid.Name != "zorglub" {
			t.Errorf("Name = %q, want %q", invalid.Name, "zorglub")
		}
	})

	t.Run("non-JSON body is an invalid project", func(t *testing.T) {
		f := mapFetcher{base + "/notaproject": "Object: <WebServiceApplication object at 0x7f92e7ae4730>, name: 'notaproject'"}
		err := CheckProject(f, base, "notaproject")
		var invalid *InvalidProjectError
		if !errors.As(err, &invalid) {
			t.Fatalf("CheckProject() error = %v, want InvalidProjectError", err)
		}
		if invalid.Name != "notaproject" {
			t.Errorf("Name = %q, want %q", invalid.Name, "notaproject")
		}
	})

	t.Run("wrong self_link is an invalid project", func(t *testing.T) {
		f := mapFetcher{base + "/nova": projectJSON(base + "/something-else")}
		var invalid *InvalidProjectError
		if err := CheckProject(f, base, "nova"); !errors.As(err, &invalid) {
			t.Errorf("CheckProject() error = %v, want InvalidProjectError", err)
		}
	})

	t.Run("valid JSON of the wrong type is a deserialization error", func(t *testing.T) {
		f := mapFetcher{base + "/nova": `["not", "an", "object"]`}
		err := CheckProject(f, base, "nova")
		var deser *DeserializationError
		if !errors.As(err, &deser) {
			t.Fatalf("CheckProject() error = %v, want DeserializationError", err)
		}
	})

	t.Run("transport error propagates", func(t *testing.T) {
		f := mapFetcher{}
		err := CheckProject(f, base, "nova")
		var transport *TransportError
		if !errors.As(err, &transport) {
			t.Errorf("CheckProject() error = %v, want TransportError", err)
		}
	})
}

func TestFetchProjectBugTasks_PaginatesAllPages(t *testing.T) {
	rec := &recordingFetcher{inner: NewFakeClient()}

	tasks, err := FetchProjectBugTasks(rec, DefaultBaseURL, "nova", StatusNew)
	if err != nil {
		t.Fatalf("FetchProjectBugTasks() error = %v", err)
	}

	wantLinks := []string{
		DefaultBugsBaseURL + "/2093869",
		DefaultBugsBaseURL + "/2093879",
		DefaultBugsBaseURL + "/2066206",
		DefaultBugsBaseURL + "/2067081",
	}
	if len(tasks) != len(wantLinks) {
		t.Fatalf("len(tasks) = %d, want %d", len(tasks), len(wantLinks))
	}
	for i, want := range wantLinks {
		if tasks[i].BugLink != want {
			t.Errorf("tasks[%d].BugLink = %q, want %q", i, tasks[i].BugLink, want)
		}
	}

	// One validation request plus one request per page.
	if len(rec.urls) != 3 {
		t.Fatalf("requests = %d (%v), want 3", len(rec.urls), rec.urls)
	}
	if rec.urls[0] != DefaultBaseURL+"/nova" {
		t.Errorf("first request = %q, want project URL", rec.urls[0])
	}
	if rec.urls[1] != DefaultBaseURL+"/nova?ws.op=searchTasks&status=New" {
		t.Errorf("second request = %q, want first page URL", rec.urls[1])
	}
	if !strings.Contains(rec.urls[2], "ws.start=2") {
		t.Errorf("third request = %q, want the server-issued next page URL", rec.urls[2])
	}
}

func TestFetchProjectBugTasks_SinglePage(t *testing.T) {
	base := "https://lp.test/1.0"
	rec := &recordingFetcher{inner: mapFetcher{
		base + "/nova":                   projectJSON(base + "/nova"),
		base + "/nova?ws.op=searchTasks": pageJSON(0, 2, "", "bug-1", "bug-2"),
	}}

	tasks, err := FetchProjectBugTasks(rec, base, "nova", "")
	if err != nil {
		t.Fatalf("FetchProjectBugTasks() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("len(tasks) = %d, want 2", len(tasks))
	}
	// A terminal first page means exactly one search request.
	if len(rec.urls) != 2 {
		t.Errorf("requests = %d (%v), want 2", len(rec.urls), rec.urls)
	}
}

func TestFetchProjectBugTasks_PreservesServerOrder(t *testing.T) {
	base := "https://lp.test/1.0"
	next := base + "/nova?ws.op=searchTasks&memo=3"
	f := mapFetcher{
		base + "/nova":                   projectJSON(base + "/nova"),
		base + "/nova?ws.op=searchTasks": pageJSON(0, 5, next, "z", "a", "m"),
		next:                             pageJSON(3, 5, "", "b", "z"),
	}

	tasks, err := FetchProjectBugTasks(f, base, "nova", "")
	if err != nil {
		t.Fatalf("FetchProjectBugTasks() error = %v", err)
	}

	got := make([]string, len(tasks))
	for i, task := range tasks {
		got[i] = task.BugLink
	}
	// Server order survives: no sorting, and the repeated "z" is not
	// deduplicated.
	want := []string{"z", "a", "m", "b", "z"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("bug links = %v, want %v", got, want)
	}
}

func TestFetchProjectBugTasks_InvalidProjectSkipsSearch(t *testing.T) {
	rec := &recordingFetcher{inner: NewFakeClient()}

	_, err := FetchProjectBugTasks(rec, DefaultBaseURL, "zorglub", StatusNew)
	var invalid *InvalidProjectError
	if !errors.As(err, &invalid) {
		t.Fatalf("FetchProjectBugTasks() error = %v, want InvalidProjectError", err)
	}
	if invalid.Name != "zorglub" {
		t.Errorf("Name = %q, want %q", invalid.Name, "zorglub")
	}
	if len(rec.urls) != 1 {
		t.Errorf("requests = %d (%v), want validation request only", len(rec.urls), rec.urls)
	}
}

func TestFetchProjectBugTasks_StatusTokenInURL(t *testing.T) {
	base := "https://lp.test/1.0"
	rec := &recordingFetcher{inner: mapFetcher{
		base + "/nova": projectJSON(base + "/nova"),
		base + "/nova?ws.op=searchTasks&status=Won't+Fix": pageJSON(0, 0, ""),
	}}

	if _, err := FetchProjectBugTasks(rec, base, "nova", StatusWontFix); err != nil {
		t.Fatalf("FetchProjectBugTasks() error = %v", err)
	}
	want := base + "/nova?ws.op=searchTasks&status=Won't+Fix"
	if rec.urls[1] != want {
		t.Errorf("search URL = %q, want %q", rec.urls[1], want)
	}
}

func TestFetchProjectBugTasks_CyclicCursorAborts(t *testing.T) {
	base := "https://lp.test/1.0"
	loop := base + "/nova?ws.op=searchTasks"
	f := mapFetcher{
		base + "/nova": projectJSON(base + "/nova"),
		loop:           pageJSON(0, 1, loop, "bug-1"),
	}

	_, err := FetchProjectBugTasks(f, base, "nova", "")
	if err == nil {
		t.Fatal("FetchProjectBugTasks() error = nil, want page budget error")
	}
	if !strings.Contains(err.Error(), "pages") {
		t.Errorf("error = %v, want mention of the page budget", err)
	}
}

func TestFetchProjectBugTasks_MalformedPage(t *testing.T) {
	base := "https://lp.test/1.0"
	f := mapFetcher{
		base + "/nova":                   projectJSON(base + "/nova"),
		base + "/nova?ws.op=searchTasks": `{"start": "zero"}`,
	}

	_, err := FetchProjectBugTasks(f, base, "nova", "")
	var deser *DeserializationError
	if !errors.As(err, &deser) {
		t.Errorf("FetchProjectBugTasks() error = %v, want DeserializationError", err)
	}
}

func TestFetchBug(t *testing.T) {
	fake := NewFakeClient()

	bug, err := FetchBug(fake, DefaultBugsBaseURL, 666)
	if err != nil {
		t.Fatalf("FetchBug() error = %v", err)
	}
	if bug.ID != 666 {
		t.Errorf("bug.ID = %d, want 666", bug.ID)
	}
	if bug.SelfLink != DefaultBugsBaseURL+"/666" {
		t.Errorf("bug.SelfLink = %q, want %q", bug.SelfLink, DefaultBugsBaseURL+"/666")
	}
	if bug.Description == "" {
		t.Error("bug.Description is empty")
	}
	if !strings.Contains(bug.Description, "openstack server migrate --live-migration") {
		t.Errorf("bug.Description = %q, want the reproduction command intact", bug.Description)
	}
}

func TestFetchBug_Idempotent(t *testing.T) {
	fake := NewFakeClient()

	first, err := FetchBug(fake, DefaultBugsBaseURL, 2093869)
	if err != nil {
		t.Fatalf("first FetchBug() error = %v", err)
	}
	second, err := FetchBug(fake, DefaultBugsBaseURL, 2093869)
	if err != nil {
		t.Fatalf("second FetchBug() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("bugs differ between fetches:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestFetchBug_MissingIdentityField(t *testing.T) {
	fake := NewFakeClient()

	for _, attempt := range []string{"first", "second"} {
		_, err := FetchBug(fake, DefaultBugsBaseURL, 5000)
		var deser *DeserializationError
		if !errors.As(err, &deser) {
			t.Fatalf("%s FetchBug() error = %v, want DeserializationError", attempt, err)
		}
		if !strings.Contains(err.Error(), "self_link") {
			t.Errorf("%s FetchBug() error = %v, want the missing field named", attempt, err)
		}
	}
}

func TestFetchBug_TransportError(t *testing.T) {
	f := mapFetcher{}
	_, err := FetchBug(f, "https://lp.test/1.0/bugs", 1)
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Errorf("FetchBug() error = %v, want TransportError", err)
	}
}
