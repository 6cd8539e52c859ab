// Package subscription models web push subscriptions: the endpoint and keys a
// browser registers so the service can notify a user who is not looking at the page.
package subscription
