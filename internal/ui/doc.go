// Package ui formats CLI output.
//
// Each Formatter names a kind of content and renders it in color when the
// terminal supports it:
//
//	ui.Code.Sprint("notevault init personal")
//	ui.Vault.Sprint("personal")
//	ui.Title.Sprint("Groceries")
//	ui.Muted.Sprintf("#%d", id)
//
// When NO_COLOR is set or the terminal cannot show color, Code, Vault, Title
// and Muted fall back to text decoration (backticks, single quotes, double
// quotes, parentheses) and the rest print unchanged.
package ui
