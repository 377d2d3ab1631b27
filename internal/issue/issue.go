// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Id identifies a catalog issue.
type Id int

const (
	ToolNotFoundId Id = iota + 1
	ConfigLoadFailedId
	TaskNotFoundId
	ActionFailedId
	InvalidArgumentId
)

type (
	// MarkdownMsg is the Markdown body of an issue.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a catalog entry with remediation guidance.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Title returns the text of the first Markdown heading, or "" if there is none.
func (i *Issue) Title() string {
	for line := range strings.Lines(string(i.mdMsg)) {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(title)
		}
	}
	return ""
}

// Render renders the issue as styled terminal text. stylePath is a glamour
// style name ("dark", "light", "notty") or a path to a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- " + string(link) + "\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# Required tool not found!

A task step needs an external program that is not on your PATH.

## Things you can try:
- Install Conan 2 and CMake, then check they are reachable:
~~~
$ conan --version
$ cmake --version
~~~

- Use the built-in shell, which provides ` + "`rm`" + ` without a host binary:
~~~
$ conbuild --runtime virtual conan-install
~~~`,
		docLinks: []HttpLink{
			"https://docs.conan.io/2/installation.html",
			"https://cmake.org/download/",
		},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Print the effective configuration and its location:
~~~
$ conbuild config path
$ conbuild config show
~~~

- Write a fresh file with every key and its default:
~~~
$ conbuild config dump > conbuild.cue
~~~

- Check ` + "`CONBUILD_*`" + ` environment variables for invalid values`,
	}

	taskNotFoundIssue = &Issue{
		id: TaskNotFoundId,
		mdMsg: `
# Task not found!

There is no task registered under that name.

## Things you can try:
- List the available tasks:
~~~
$ conbuild list
~~~

- Check for typos in the task name`,
	}

	actionFailedIssue = &Issue{
		id: ActionFailedId,
		mdMsg: `
# A task step failed!

Steps run in order and the task stops at the first failure. Later steps
were not run and nothing was rolled back.

## Things you can try:
- Re-run with all output shown:
~~~
$ conbuild --verbosity 2 <task>
~~~

- Print the commands without running them:
~~~
$ conbuild --dry-run <task>
~~~

- Run the earlier task in the chain first (conan-install, cmake-configure, cmake-build, cmake-install)`,
	}

	invalidArgumentIssue = &Issue{
		id: InvalidArgumentId,
		mdMsg: `
# Invalid task argument!

A flag value could not be used to build the task's commands.

## Things you can try:
- Show the flags the task accepts:
~~~
$ conbuild <task> --help
~~~

- Pass non-empty values for ` + "`--output-folder`" + ` and ` + "`--build-type`",
	}

	issues = map[Id]*Issue{
		toolNotFoundIssue.Id():     toolNotFoundIssue,
		configLoadFailedIssue.Id(): configLoadFailedIssue,
		taskNotFoundIssue.Id():     taskNotFoundIssue,
		actionFailedIssue.Id():     actionFailedIssue,
		invalidArgumentIssue.Id():  invalidArgumentIssue,
	}
)

// Values returns all catalog issues ordered by Id.
func Values() []*Issue {
	all := make([]*Issue, 0, len(issues))
	for i := range maps.Values(issues) {
		all = append(all, i)
	}
	slices.SortFunc(all, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return all
}

// Get returns the issue with the given id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
