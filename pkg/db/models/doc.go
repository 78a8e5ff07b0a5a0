// Package models defines the persisted entities shared by repositories.
package models
