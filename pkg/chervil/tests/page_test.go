package tests

import (
	"strings"
	"testing"
)

func TestRenderFullPage(t *testing.T) {
	code := `
let title = "My Blog";
let posts = ["First post", "Second post"];

let page = <html>
	<head><title>{title}</title></head>
	<body>
		<h1>{title}</h1>
		<ul>
			{for post in posts { <li>{post}</li> }}
		</ul>
	</body>
</html>;

html(page)
`
	str := expectString(t, run(t, code))

	for _, want := range []string{
		"<html>", "<title>", "My Blog", "<li>", "First post", "Second post", "</html>",
	} {
		if !strings.Contains(str.Value, want) {
			t.Errorf("output missing %q:\n%s", want, str.Value)
		}
	}
}

func TestMarkupIsAFirstClassValue(t *testing.T) {
	code := `
let rows = [<tr><td>"a"</td></tr>, <tr><td>"b"</td></tr>];
len(rows)
`
	result := run(t, code)
	if result.Inspect() != "2" {
		t.Fatalf("want 2, got %s", result.Inspect())
	}
}

func TestMarkupReturnedFromFunction(t *testing.T) {
	code := `
let link = fn(url, text) { <a href={url}>{text}</a> };
html(link("/about", "About"))
`
	str := expectString(t, run(t, code))

	expected := "<a href=\"/about\">\n    About\n</a>"
	if str.Value != expected {
		t.Fatalf("want:\n%s\ngot:\n%s", expected, str.Value)
	}
}

func TestConditionalMarkup(t *testing.T) {
	code := `
let nav = fn(loggedIn) {
	if loggedIn { <a href="/logout">"Log out"</a> }
	else { <a href="/login">"Log in"</a> }
};
html(nav(false))
`
	str := expectString(t, run(t, code))

	if !strings.Contains(str.Value, "Log in") {
		t.Fatalf("want the logged-out link, got:\n%s", str.Value)
	}
}

func TestComponentComposition(t *testing.T) {
	code := `
let Layout = fn(props) {
	<main>
		<header><h1>{props.heading}</h1></header>
		{props.children}
	</main>
};
let Article = fn(props) { <article>{props.children}</article> };

html(<Layout heading="News"><Article>"Body copy."</Article></Layout>)
`
	str := expectString(t, run(t, code))

	for _, want := range []string{"<main>", "<header>", "News", "<article>", "Body copy."} {
		if !strings.Contains(str.Value, want) {
			t.Errorf("output missing %q:\n%s", want, str.Value)
		}
	}
}

func TestMarkdownInsidePage(t *testing.T) {
	code := `
let body = markdown("# Hello\n\nSome *text*.");
body
`
	str := expectString(t, run(t, code))

	if !strings.Contains(str.Value, "<h1>Hello</h1>") {
		t.Fatalf("markdown heading missing:\n%s", str.Value)
	}
	if !strings.Contains(str.Value, "<em>text</em>") {
		t.Fatalf("markdown emphasis missing:\n%s", str.Value)
	}
}

func TestFragmentsSpliceIntoParents(t *testing.T) {
	code := `
let pair = <><dt>"term"</dt><dd>"definition"</dd></>;
html(<dl>{pair}</dl>)
`
	str := expectString(t, run(t, code))

	if !strings.Contains(str.Value, "<dt>") || !strings.Contains(str.Value, "<dd>") {
		t.Fatalf("fragment children missing:\n%s", str.Value)
	}
	if strings.Contains(str.Value, "<>") {
		t.Fatalf("fragment should not render a tag of its own:\n%s", str.Value)
	}
}
