package main

// Visitor-facing copy that is not part of the editable site content.
var (
	ContactSent = `Thank you for your message! I'll get back to you soon.`

	ContactFailed = `Sorry, there was an error sending your message. Please try again later
	or write to me directly by email.`

	ContactUnavailable = `The contact form is temporarily unavailable. Please reach me directly by email
	in the meantime.`

	ContactInvalid = `Please fix the highlighted fields and try again.`

	AdminLoginFailed = `Invalid credentials`

	AdminStatsFailed = `Failed to load statistics`

	NotFoundText = `The page you were looking for does not exist.`
)
