// package ui holds the terminal stylesheet used by summary output.
package ui
