package store

// SQL query constants organized by entity.
// All SQL lives here; PostgresStore methods reference these constants.

// Rule queries.
const (
	ruleColumns = `id, owner_id, entity_id, metric, operator, threshold, category,
		active, last_state, version, created_at, updated_at`

	queryCreateRule = `
		INSERT INTO alert_rules (
			id, owner_id, entity_id, metric, operator, threshold, category, active
		) VALUES (
			@id, @owner_id, @entity_id, @metric, @operator, @threshold, @category, @active
		)
		RETURNING version, created_at, updated_at`

	queryGetRule = `SELECT ` + ruleColumns + ` FROM alert_rules WHERE id = $1`

	queryListRules = `
		SELECT ` + ruleColumns + `
		FROM alert_rules
		WHERE ($1 = '' OR owner_id = $1)
		  AND (NOT $2 OR active)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	queryListActiveRulesForEntity = `
		SELECT ` + ruleColumns + `
		FROM alert_rules
		WHERE entity_id = $1 AND metric = $2 AND active
		ORDER BY id`

	queryUpdateRule = `
		UPDATE alert_rules SET
			entity_id = @entity_id,
			metric = @metric,
			operator = @operator,
			threshold = @threshold,
			category = @category,
			active = @active,
			last_state = @last_state,
			version = version + 1,
			updated_at = now()
		WHERE id = @id AND version = @version
		RETURNING version, updated_at`

	queryUpdateRuleState = `
		UPDATE alert_rules SET
			last_state = $2,
			version = version + 1,
			updated_at = now()
		WHERE id = $1 AND version = $3
		RETURNING version, updated_at`

	queryDeleteRule = `DELETE FROM alert_rules WHERE id = $1`

	queryRuleExists = `SELECT EXISTS(SELECT 1 FROM alert_rules WHERE id = $1)`
)

// Channel contact queries.
const (
	queryGetChannelContacts = `
		SELECT channel, address, enabled
		FROM channel_contacts
		WHERE owner_id = $1
		ORDER BY channel`

	queryDeleteChannelContacts = `DELETE FROM channel_contacts WHERE owner_id = $1`

	queryInsertChannelContact = `
		INSERT INTO channel_contacts (owner_id, channel, address, enabled, updated_at)
		VALUES ($1, $2, $3, $4, now())`
)

// Notification queries.
const (
	queryCreateNotification = `
		INSERT INTO notifications (
			id, owner_id, rule_id, title, body, category, priority,
			data, channels, status, failure_reason
		) VALUES (
			@id, @owner_id, @rule_id, @title, @body, @category, @priority,
			@data, @channels, @status, NULLIF(@failure_reason, '')
		)
		RETURNING version, created_at, updated_at`

	queryGetNotification = baseNotificationsSelect + ` WHERE id = $1`

	queryUpdateNotification = `
		UPDATE notifications SET
			status = $2,
			failure_reason = NULLIF($3, ''),
			read_at = $4,
			version = version + 1,
			updated_at = now()
		WHERE id = $1 AND version = $5
		RETURNING version, updated_at`

	queryDeleteNotification = `DELETE FROM notifications WHERE id = $1`

	queryNotificationExists = `SELECT EXISTS(SELECT 1 FROM notifications WHERE id = $1)`
)

// Delivery attempt queries.
const (
	attemptColumns = `id, notification_id, channel, recipient, attempt_number, status,
		COALESCE(last_error, ''), next_retry_at, version, created_at, updated_at`

	queryCreateAttempt = `
		INSERT INTO delivery_attempts (
			id, notification_id, channel, recipient, attempt_number, status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING version, created_at, updated_at`

	queryGetAttempt = `SELECT ` + attemptColumns + ` FROM delivery_attempts WHERE id = $1`

	queryListAttempts = `
		SELECT ` + attemptColumns + `
		FROM delivery_attempts
		WHERE notification_id = $1
		ORDER BY channel`

	queryUpdateAttempt = `
		UPDATE delivery_attempts SET
			recipient = @recipient,
			attempt_number = @attempt_number,
			status = @status,
			last_error = NULLIF(@last_error, ''),
			next_retry_at = @next_retry_at,
			version = version + 1,
			updated_at = now()
		WHERE id = @id AND version = @version
		RETURNING version, updated_at`

	queryAttemptExists = `SELECT EXISTS(SELECT 1 FROM delivery_attempts WHERE id = $1)`

	queryListStaleAttempts = `
		SELECT ` + attemptColumns + `
		FROM delivery_attempts
		WHERE (status = 'pending' AND COALESCE(next_retry_at, updated_at) < $1)
		   OR (status = 'in_flight' AND updated_at < $1)
		ORDER BY updated_at
		LIMIT $2`
)

// Suppression queries.
const (
	queryRecordSuppression = `
		INSERT INTO suppressed_triggers (id, owner_id, rule_id, category, channel, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	queryListSuppressions = `
		SELECT id, owner_id, rule_id, category, channel, reason, created_at
		FROM suppressed_triggers
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
)
