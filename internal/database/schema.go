package database

// Stay dates are DATE columns holding YYYY-MM-DD; callers always bind them as
// strings so both drivers compare them as calendar dates.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS hotels (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS room_categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		base_price_cents INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hotel_id INTEGER NOT NULL REFERENCES hotels(id),
		category_id INTEGER NOT NULL REFERENCES room_categories(id),
		number TEXT NOT NULL,
		floor INTEGER NOT NULL DEFAULT 0,
		base_price_cents INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'available',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (hotel_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		reference TEXT NOT NULL UNIQUE,
		room_id INTEGER NOT NULL REFERENCES rooms(id),
		hotel_id INTEGER NOT NULL,
		client_id INTEGER NOT NULL,
		check_in DATE NOT NULL,
		check_out DATE NOT NULL,
		adults INTEGER NOT NULL DEFAULT 1,
		children INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		nightly_rate_cents INTEGER NOT NULL,
		total_amount_cents INTEGER NOT NULL,
		convention_id INTEGER,
		nights TEXT NOT NULL DEFAULT '[]',
		special_requests TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		CHECK (check_in < check_out)
	)`,
	`CREATE TABLE IF NOT EXISTS conventions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id INTEGER NOT NULL,
		category_id INTEGER NOT NULL REFERENCES room_categories(id),
		hotel_id INTEGER,
		default_price_cents INTEGER NOT NULL DEFAULT 0,
		monthly_prices TEXT NOT NULL DEFAULT '[]',
		reduction_percent REAL NOT NULL DEFAULT 0,
		monthly_forfait_cents INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT 1,
		start_date DATE,
		end_date DATE,
		conditions TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rooms_hotel ON rooms(hotel_id)`,
	`CREATE INDEX IF NOT EXISTS idx_rooms_category ON rooms(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_room_dates ON reservations(room_id, check_in, check_out)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
	`CREATE INDEX IF NOT EXISTS idx_conventions_client_category ON conventions(client_id, category_id)`,
}

var postgresSchema = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`CREATE TABLE IF NOT EXISTS hotels (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS room_categories (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		base_price_cents BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id BIGSERIAL PRIMARY KEY,
		hotel_id BIGINT NOT NULL REFERENCES hotels(id),
		category_id BIGINT NOT NULL REFERENCES room_categories(id),
		number TEXT NOT NULL,
		floor INTEGER NOT NULL DEFAULT 0,
		base_price_cents BIGINT NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'available',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (hotel_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id BIGSERIAL PRIMARY KEY,
		reference TEXT NOT NULL UNIQUE,
		room_id BIGINT NOT NULL REFERENCES rooms(id),
		hotel_id BIGINT NOT NULL,
		client_id BIGINT NOT NULL,
		check_in DATE NOT NULL,
		check_out DATE NOT NULL,
		adults INTEGER NOT NULL DEFAULT 1,
		children INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		nightly_rate_cents BIGINT NOT NULL,
		total_amount_cents BIGINT NOT NULL,
		convention_id BIGINT,
		nights TEXT NOT NULL DEFAULT '[]',
		special_requests TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CHECK (check_in < check_out),
		CONSTRAINT reservations_no_overlap EXCLUDE USING gist (
			room_id WITH =,
			daterange(check_in, check_out, '[)') WITH &&
		) WHERE (status IN ('pending', 'confirmed', 'in_progress'))
	)`,
	`CREATE TABLE IF NOT EXISTS conventions (
		id BIGSERIAL PRIMARY KEY,
		client_id BIGINT NOT NULL,
		category_id BIGINT NOT NULL REFERENCES room_categories(id),
		hotel_id BIGINT,
		default_price_cents BIGINT NOT NULL DEFAULT 0,
		monthly_prices TEXT NOT NULL DEFAULT '[]',
		reduction_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
		monthly_forfait_cents BIGINT NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		start_date DATE,
		end_date DATE,
		conditions TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rooms_hotel ON rooms(hotel_id)`,
	`CREATE INDEX IF NOT EXISTS idx_rooms_category ON rooms(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
	`CREATE INDEX IF NOT EXISTS idx_conventions_client_category ON conventions(client_id, category_id)`,
}
