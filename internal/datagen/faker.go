//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// Copyright (c) 2026, the retail-etl authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates sample source extracts so the pipeline can
// be exercised end-to-end without real data.
package datagen

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker provides fake data generation using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for
// reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// ProductName generates a random product name.
func (f *Faker) ProductName() string {
	return f.faker.ProductName()
}

// Country generates a random country name.
func (f *Faker) Country() string {
	return f.faker.Country()
}

// Price generates a random price in the given range.
func (f *Faker) Price(min, max float64) float64 {
	return f.faker.Price(min, max)
}

// Number generates a random integer in the given inclusive range.
func (f *Faker) Number(min, max int) int {
	return f.faker.Number(min, max)
}

// DateRange generates a random time between start and end.
func (f *Faker) DateRange(start, end time.Time) time.Time {
	return f.faker.DateRange(start, end)
}

// RandomString picks a random element from the given slice.
func (f *Faker) RandomString(options []string) string {
	return f.faker.RandomString(options)
}
