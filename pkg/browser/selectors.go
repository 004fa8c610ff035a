package browser

// SelectorChain is an ordered fallback list of locator expressions for one
// logical UI target. Chains are tried strictly in order and the first visible
// match wins, so adjusting to portal drift is a data change: add the new
// markup's selector near the front, keep the generic fallbacks at the end.
type SelectorChain struct {
	// Target names the logical UI element, e.g. "global search box". Used in
	// ElementNotFoundError messages.
	Target string

	// Candidates are locator expressions ordered most specific/stable first.
	Candidates []string
}

// SearchBoxChain locates the portal's global search input. The first entry is
// the ADF-generated id of the current portal release; the rest degrade toward
// generic search-input markup.
var SearchBoxChain = SelectorChain{
	Target: "global search box",
	Candidates: []string{
		`#pt1\:svMenu\:gsb\:subFgsb\:mGlobalSearch\:pt_itG\:\:content`,
		`[role="textbox"][aria-label*="Global Search" i]`,
		`input[id*="mGlobalSearch" i]`,
		`div[role="search"] input`,
		`input[aria-label*="Global Search" i]`,
		`input[aria-label*="Search" i]`,
		`input[placeholder*="Search" i]`,
		`input[type="search"]`,
		`input[id*="search" i]`,
		`input[name*="search" i]`,
	},
}

// SearchTriggerChain locates controls that reveal or focus the search field
// when the input itself is not directly interactable.
var SearchTriggerChain = SelectorChain{
	Target: "search trigger",
	Candidates: []string{
		`button[aria-label*="Search" i]`,
		`a[aria-label*="Search" i]`,
		`button:has(svg[aria-label*="search" i])`,
		`button:has-text("Search")`,
		`#pt1\:svMenu\:gsb\:subFgsb\:menu_pt_cil2\:\:icon`,
		`img[title*="Global Search" i]`,
	},
}

// SearchSubmitChain locates an explicit submit control for the global search.
// When the chain exhausts, the pipeline falls back to a keyboard submit.
var SearchSubmitChain = SelectorChain{
	Target: "search submit control",
	Candidates: []string{
		`#pt1\:svMenu\:gsb\:subFgsb\:menu_pt_cil2\:\:icon`,
		`img[title*="Global Search" i]`,
		`button[type="submit"][aria-label*="Search" i]`,
	},
}

// loginPageHints are structural signals that the current page is a login or
// identity-provider screen, ordered most specific first and evaluated
// short-circuit. Several weak signals are kept deliberately: no single one
// survives IDCS markup changes.
var loginPageHints = []string{
	`form#idcs-signin-basic-signin-form`,
	`div[id*="idcs" i]`,
	`input[type="password"]`,
	`input[name="username"]`,
	`input[name="userid"]`,
	`text=Oracle Identity Cloud`,
}

// LoginUsernameChain locates the username/email field of the login flow.
var LoginUsernameChain = SelectorChain{
	Target: "login username field",
	Candidates: []string{
		`input[name="username"]`,
		`input[id*="username" i]`,
		`input[type="email"]`,
		`#idcs-signin-basic-signin-form input[type="email"]`,
	},
}

// LoginPasswordChain locates the password field of the login flow.
var LoginPasswordChain = SelectorChain{
	Target: "login password field",
	Candidates: []string{
		`input[name="password"]`,
		`input[id*="password" i]`,
		`#idcs-signin-basic-signin-form input[type="password"]`,
	},
}

// LoginNextChain locates the advance control of the two-step login ("Next").
var LoginNextChain = SelectorChain{
	Target: "login next button",
	Candidates: []string{
		`button[name="signInBtn"]`,
		`button:has-text("Next")`,
		`#idcs-signin-basic-signin-form button[type="submit"]`,
	},
}

// LoginSubmitChain locates the final sign-in control.
var LoginSubmitChain = SelectorChain{
	Target: "login submit button",
	Candidates: []string{
		`button[id*="signin" i]`,
		`button[type="submit"]:has-text("Sign In")`,
		`button:has-text("Login")`,
		`#idcs-signin-basic-signin-form button[type="submit"]`,
	},
}

// DocumentContentChain locates the rendered body region of a knowledge
// document view.
var DocumentContentChain = SelectorChain{
	Target: "document content region",
	Candidates: []string{
		`div[id*="DocumentDisplay" i]`,
		`div[class*="km-document" i]`,
		`div[id*="docDisplay" i]`,
		`div[role="main"]`,
		`main`,
		`article`,
		`body`,
	},
}
