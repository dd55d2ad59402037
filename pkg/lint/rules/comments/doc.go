// Package comments holds rules about program comments.
package comments
