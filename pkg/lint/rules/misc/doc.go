// Package misc holds rules that do not fit a structural category, most
// notably the naming check for test objects.
package misc
