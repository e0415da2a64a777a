package signon

// Probe scripts evaluated on the login page. Each one observes the DOM,
// performs at most one side effect, and reports what happened as a plain
// string so the machine can decide whether to advance.
const (
	probeResultAbsent  = "absent"
	probeResultClicked = "clicked"
	probeResultFilled  = "filled"
	probeResultNoError = "none"
)

// providerButtonScript clicks the corporate identity provider button.
const providerButtonScript = `() => {
	const button = document.querySelector(
		'[data-test="provider-signin"], button[data-provider], a[href*="/oauth2/authorize"]');
	if (!button) {
		return "absent";
	}
	button.click();
	return "clicked";
}`

// identifierFieldScript fills the username input and submits the form.
// The value is injected by the machine as a JSON string literal.
const identifierFieldScriptTemplate = `() => {
	const field = document.querySelector(
		'input[type="email"], input[name="loginfmt"], input[autocomplete="username"]');
	if (!field || field.offsetParent === null) {
		return "absent";
	}
	const setter = Object.getOwnPropertyDescriptor(
		window.HTMLInputElement.prototype, "value").set;
	setter.call(field, %s);
	field.dispatchEvent(new Event("input", { bubbles: true }));
	const submit = document.querySelector(
		'input[type="submit"], button[type="submit"]');
	if (submit) {
		submit.click();
	} else {
		field.form && field.form.submit();
	}
	return "filled";
}`

// passwordFieldScript fills the password input and submits the form.
const passwordFieldScriptTemplate = `() => {
	const field = document.querySelector(
		'input[type="password"], input[name="passwd"], input[autocomplete="current-password"]');
	if (!field || field.offsetParent === null) {
		return "absent";
	}
	const setter = Object.getOwnPropertyDescriptor(
		window.HTMLInputElement.prototype, "value").set;
	setter.call(field, %s);
	field.dispatchEvent(new Event("input", { bubbles: true }));
	const submit = document.querySelector(
		'input[type="submit"], button[type="submit"]');
	if (submit) {
		submit.click();
	} else {
		field.form && field.form.submit();
	}
	return "filled";
}`

// errorBannerScript reports the visible login error text, if any.
const errorBannerScript = `() => {
	const banner = document.querySelector(
		'#errorText, [role="alert"], .error-message, [data-test="signin-error"]');
	if (!banner || !banner.textContent || banner.offsetParent === null) {
		return "none";
	}
	const text = banner.textContent.trim();
	return text === "" ? "none" : text;
}`
