// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ballotbox API server.

ballotbox runs one student council election: eligible students cast exactly
one ballot covering every office, and the tally is published once the
announcement time passes.

# Starting the Server

The server reads CLI flags, environment variables and an optional .env file:

	DATABASE_URL=postgres://... DATABASE_TYPE=postgres JWT_SECRET=... go run .

Local development without any infrastructure:

	go run . -env development -t memory -election election.yaml

# Configuration

Required outside development:

  - DATABASE_URL (-d): connection string, unless DATABASE_TYPE is memory
  - JWT_SECRET (-jwt-secret) or JWT_PUBLIC_KEY_FILE (-jwt-public-key)
  - VOTER_HASH_SALT (-hash-salt) when KAFKA_BROKERS is set

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres or memory (default: sqlite)
  - ELECTION_FILE (-election): election definition (default: election.yaml)
  - REDIS_URL (-redis): shared result cache
  - CACHE_TTL (-cache-ttl): result cache lifetime (default: 300s)
  - KAFKA_BROKERS (-kafka-brokers): ballot cast audit events
  - LOG_LEVEL, LOG_FORMAT, LOG_FILE: logging

# Architecture

  - election: period gate, eligibility, ballot submission and tallying
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Domain and request/response types
  - auth: ID token verification and development credentials
  - db: SQL and in-memory ballot stores
  - cache: Redis result cache
  - events: Kafka ballot cast publisher
  - metrics: Prometheus collectors
  - scheduler: Result cache warmer
  - logging: Logger setup
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
