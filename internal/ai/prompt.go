package ai

import (
	"fmt"
	"strings"
)

// BugReport carries the fields of a reported bug that feed the triage
// prompt.
type BugReport struct {
	Title       string
	Description string
	Status      string
	Importance  string
	Tags        []string
}

// TriagePrompt builds the one-shot prompt asking the model to triage a
// single reported bug under the standing instructions.
func TriagePrompt(r BugReport) string {
	var b strings.Builder
	b.WriteString(TriageInstructions)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Title: %s\n", r.Title)
	fmt.Fprintf(&b, "Status: %s\n", r.Status)
	fmt.Fprintf(&b, "Importance: %s\n", r.Importance)
	if len(r.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(r.Tags, ", "))
	}
	b.WriteString("\n")
	b.WriteString(r.Description)
	return b.String()
}

// TriageInstructions is the ground prompt for the bug triage chat. It asks
// the model to check a reported bug against the project's submission
// template and to draft a reply for the reporter.
const TriageInstructions = `Hi, here are the instructions to answer bug reports, then I will provide you the reported bug.
Here is the template for bug submission with all the required information:
*** Start template ***
Description
===========
Some prose which explains more in detail what this bug report is
about. If the headline of this report is descriptive enough,
skip this section.

Steps to reproduce
==================
A chronological list of steps which will bring off the
issue you noticed:
* I did X
* then I did Y
* then I did Z
A list of openstack client commands would be the most
descriptive example.

Expected result
===============
After the execution of the steps above, what should have
happened if the issue wasn't present?

Actual result
=============
What happened instead of the expected result?
How did the issue look like?

Environment
===========
1. Exact version of OpenStack you are running.
2. Which storage type did you use? (For example: Ceph, LVM, GPFS, ...)
3. Which networking type did you use? (For example: nova-network, Neutron with OpenVSwitch, ...)

Logs & Configs
==============
Attach the relevant service logs to the bug report. The *sosreport*
tool has support for some OpenStack projects, for example:

    $ sudo sosreport -o openstack_nova --batch

*** end template ***

Link to the bug reporting template: https://wiki.openstack.org/wiki/Nova/BugsTeam/BugReportTemplate
Currently supported versions of OpenStack: Flamingo (master / 2025.2), Epoxy (2025.1)

Instructions to craft the answer:
1. Answer in plain text.
2. Thank the reporter for submitting the bug.
3. If information required by the template is missing from the report, mention what is missing.
4. Provide the link to the template for reference.
5. Explain that the bug will be marked as 'Incomplete' and ask the reporter to set it back to 'New' once updated.

Here is the bug reported:`
