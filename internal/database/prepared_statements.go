package database

// Requêtes CQL partagées par les stores. gocql prépare et met en cache
// chaque requête à la première exécution sur une session.
const (
	// --- ks_users ---
	CQLGetUserIDByEmail = `SELECT user_id FROM users_by_email WHERE email = ?`

	CQLGetUserByID = `SELECT email, password, name, role, created_at, updated_at
		FROM users WHERE user_id = ?`

	CQLUpdateUser = `UPDATE users SET email = ?, password = ?, name = ?, role = ?, updated_at = ?
		WHERE user_id = ?`

	CQLClaimEmail = `INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`

	CQLReleaseEmail = `DELETE FROM users_by_email WHERE email = ?`

	// --- ks_orders ---
	orderColumns = `order_id, user_id, user_email, user_name, items, payment_intent_id,
		session_id, stripe_payment_id, payment_method, payment_status, payment_amount,
		currency, order_status, total_amount, shipping_address, email_sent, created_at`

	CQLInsertOrder = `INSERT INTO orders (` + orderColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	CQLInsertOrderByUser = `INSERT INTO orders_by_user (` + orderColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	CQLGetOrderByID = `SELECT ` + orderColumns + ` FROM orders WHERE order_id = ?`

	CQLListOrdersByUser = `SELECT ` + orderColumns + ` FROM orders_by_user WHERE user_id = ?`

	CQLUpdateOrderEmailSent = `UPDATE orders SET email_sent = ? WHERE order_id = ?`

	CQLUpdateOrderByUserEmailSent = `UPDATE orders_by_user SET email_sent = ?
		WHERE user_id = ? AND created_at = ? AND order_id = ?`

	CQLClaimPayment = `INSERT INTO orders_by_payment (payment_id, order_id, claimed_at) VALUES (?, ?, ?) IF NOT EXISTS`

	CQLTakeOverPayment = `UPDATE orders_by_payment SET order_id = ?, claimed_at = ? WHERE payment_id = ? IF order_id = ?`

	CQLReleasePayment = `DELETE FROM orders_by_payment WHERE payment_id = ? IF order_id = ?`

	// --- ks_products ---
	CQLGetProduct = `SELECT name, price, image_urls FROM products WHERE product_id = ?`
)
