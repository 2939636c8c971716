// Package format turns prober results into the text shown to the user.
// Functions never mutate their inputs and never fail.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rag-api-explorer-be/pkg/store"
)

const (
	MaxInlineEndpoints  = 10
	SampleMaxChars      = 200
	HistoryPreviewChars = 100
	CallDataMaxChars    = 3000
	HistoryListLimit    = 10

	dateLayout = "02/01/2006 15:04:05"
)

// Reply is the formatted part of a response envelope.
type Reply struct {
	Response   string
	Data       any
	Favorites  []store.Favorite
	History    []store.HistoryEntry
	FavoriteID string
}

// Truncate cuts s to max runes and appends "..." when something was cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func indentJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func writeEndpointLines(b *strings.Builder, endpoints []store.Endpoint, withDetails bool) {
	limit := len(endpoints)
	if limit > MaxInlineEndpoints {
		limit = MaxInlineEndpoints
	}
	for i, ep := range endpoints[:limit] {
		fmt.Fprintf(b, "%d. **%s %s**\n", i+1, ep.Method, ep.Path)
		if ep.Description != "" {
			fmt.Fprintf(b, "   %s\n", ep.Description)
		}
		if ep.Status != 0 {
			if withDetails {
				rt := "N/A"
				if ep.ResponseTime > 0 {
					rt = fmt.Sprintf("%d", ep.ResponseTime)
				}
				fmt.Fprintf(b, "   📊 Statut: %d (%sms)\n", ep.Status, rt)
			} else {
				fmt.Fprintf(b, "   📊 Statut: %d\n", ep.Status)
			}
		}
		if withDetails && len(ep.SampleResponse) > 0 {
			fmt.Fprintf(b, "   📦 Exemple: `%s`\n", Truncate(compactJSON(ep.SampleResponse), SampleMaxChars))
		}
		b.WriteString("\n")
	}
	if len(endpoints) > MaxInlineEndpoints {
		fmt.Fprintf(b, "... et %d autres endpoints\n\n", len(endpoints)-MaxInlineEndpoints)
	}
}

// Exploration formats the first answer after entering API mode.
func Exploration(apiURL string, info *store.APIInfo) Reply {
	endpoints := endpointsOf(info)
	if len(endpoints) == 0 {
		return Reply{
			Response: fmt.Sprintf("🔍 J'ai exploré l'API à l'adresse **%s** mais je n'ai pas trouvé d'endpoints accessibles ou de documentation.\n\n", apiURL) +
				"Vous pouvez essayer:\n" +
				"- \"Explore https://jsonplaceholder.typicode.com\" pour tester avec une API publique\n" +
				"- \"Ajoute cette API aux favoris\" pour la sauvegarder avec des headers personnalisés",
			Data: map[string]any{"apiUrl": apiURL, "endpoints": []store.Endpoint{}},
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🌐 J'ai exploré l'API à l'adresse **%s** et trouvé %d endpoints accessibles:\n\n", apiURL, len(endpoints))
	writeEndpointLines(&b, endpoints, true)

	b.WriteString("💡 **Commandes disponibles**:\n")
	b.WriteString("- \"Appelle l'endpoint 1\" (ou tout autre numéro)\n")
	b.WriteString("- \"Appelle /users\" (ou tout autre chemin)\n")
	b.WriteString("- \"Ajoute cette API aux favoris\"\n")
	b.WriteString("- \"Montre la documentation\"\n")
	b.WriteString("- \"Quitte le mode API\" pour revenir au chat normal\n")

	return Reply{
		Response: b.String(),
		Data:     map[string]any{"apiUrl": apiURL, "endpoints": endpoints},
	}
}

// EndpointList answers an explicit listing request while in API mode.
func EndpointList(apiURL string, info *store.APIInfo) Reply {
	endpoints := endpointsOf(info)

	var b strings.Builder
	fmt.Fprintf(&b, "📋 **Endpoints disponibles pour %s**:\n\n", apiURL)
	if len(endpoints) == 0 {
		b.WriteString("Aucun endpoint accessible n'a été trouvé.\n\n")
	}
	writeEndpointLines(&b, endpoints, false)

	b.WriteString("💡 Vous pouvez appeler un endpoint spécifique avec:\n")
	b.WriteString("- \"Appelle l'endpoint 1\" (ou tout autre numéro)\n")
	b.WriteString("- \"Appelle /users\" (ou tout autre chemin)")

	return Reply{
		Response: b.String(),
		Data:     map[string]any{"apiUrl": apiURL, "endpoints": endpoints},
	}
}

// EndpointNotFound enumerates every known endpoint, not just the inline ten.
func EndpointNotFound(reference string, endpoints []store.Endpoint) Reply {
	lines := make([]string, len(endpoints))
	for i, ep := range endpoints {
		lines[i] = fmt.Sprintf("%d. %s %s", i+1, ep.Method, ep.Path)
	}
	return Reply{
		Response: fmt.Sprintf("❌ Je n'ai pas trouvé l'endpoint %s. Voici les endpoints disponibles:\n\n", reference) +
			strings.Join(lines, "\n"),
		Data: map[string]any{"endpoints": endpoints},
	}
}

// CallResult formats the outcome of an endpoint call, including non-2xx answers.
func CallResult(ep store.Endpoint, result *store.CallResult) Reply {
	if result.Error != "" {
		return Reply{
			Response: fmt.Sprintf("❌ L'appel à **%s %s** a échoué:\n", ep.Method, ep.Path) +
				fmt.Sprintf("📊 Statut: %d\n", result.Status) +
				fmt.Sprintf("💥 Erreur: %s\n\n", result.Error) +
				"💡 Vous pouvez essayer un autre endpoint ou vérifier si l'API nécessite une authentification.",
			Data: result,
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📡 **Résultat de %s %s**\n\n", ep.Method, ep.Path)
	fmt.Fprintf(&b, "🕒 Temps de réponse: %dms\n", result.Duration)
	fmt.Fprintf(&b, "📊 **Statut**: %d\n\n", result.Status)

	if ct := result.Headers["content-type"]; ct != "" {
		fmt.Fprintf(&b, "📦 **Type**: %s\n\n", ct)
	}

	body := indentJSON(result.Data)
	cut := len([]rune(body)) > CallDataMaxChars
	b.WriteString("📄 **Données**:\n```json\n")
	b.WriteString(Truncate(body, CallDataMaxChars))
	b.WriteString("\n```\n")

	if result.Truncated || cut {
		b.WriteString("ℹ️ *Les données ont été tronquées pour une meilleure lisibilité.*\n")
	}

	b.WriteString("\n🔄 **Prochaines étapes**:\n")
	b.WriteString("- \"Appelle l'endpoint X\" pour tester un autre endpoint\n")
	b.WriteString("- \"Ajoute cette API aux favoris\" pour la sauvegarder\n")
	b.WriteString("- \"Montre la documentation\" pour plus de détails\n")
	b.WriteString("- \"Quitte le mode API\" pour revenir au chat normal")

	data := result.RawData
	if len(data) == 0 {
		data = result.Data
	}
	return Reply{Response: b.String(), Data: data}
}

func Documentation(doc string) Reply {
	return Reply{
		Response: "Voici la documentation de l'API:\n\n```markdown\n" + doc + "\n```",
	}
}

func FavoriteAdded(fav *store.Favorite) Reply {
	return Reply{
		Response: "⭐ API ajoutée aux favoris avec succès!\n\n" +
			"Vous pouvez maintenant:\n" +
			"- Ajouter des headers personnalisés (comme les clés d'API)\n" +
			"- Consulter \"Mes favoris\" pour voir toutes vos APIs sauvegardées\n" +
			"- Utiliser \"Appelle l'endpoint X\" pour tester les endpoints",
		FavoriteID: fav.ID,
		Data:       fav,
	}
}

func Favorites(favorites []store.Favorite) Reply {
	if len(favorites) == 0 {
		return Reply{
			Response: "🔖 Vous n'avez pas encore d'APIs favorites. Explorez une API et utilisez \"Ajoute aux favoris\" pour en sauvegarder une.",
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔖 **Vos APIs favorites** (%d):\n\n", len(favorites))
	for i, fav := range favorites {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, fav.Name)
		fmt.Fprintf(&b, "   🔗 %s\n", fav.URL)
		fmt.Fprintf(&b, "   📝 %s\n", fav.Description)
		fmt.Fprintf(&b, "   📅 Dernière utilisation: %s\n\n", formatDate(fav.LastUsed))
	}
	b.WriteString("💡 Vous pouvez:\n")
	b.WriteString("- \"Explore [URL]\" pour explorer une nouvelle API\n")
	b.WriteString("- \"Supprime le favori X\" pour supprimer un favori\n")

	return Reply{Response: b.String(), Favorites: favorites}
}

// History lists at most HistoryListLimit entries, most recent first as given.
func History(entries []store.HistoryEntry) Reply {
	if len(entries) == 0 {
		return Reply{
			Response: "📜 Votre historique d'appels API est vide. Explorez une API et appelez des endpoints pour commencer.",
		}
	}
	if len(entries) > HistoryListLimit {
		entries = entries[:HistoryListLimit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📜 **Votre historique d'appels API** (%d derniers):\n\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. **%s %s**\n", i+1, e.Method, e.Endpoint)
		fmt.Fprintf(&b, "   🕒 %s (%dms)\n", formatDate(e.Timestamp), e.Duration)
		fmt.Fprintf(&b, "   📊 Statut: %d\n", e.Status)
		if e.Status > 0 && e.Status < 400 {
			fmt.Fprintf(&b, "   📦 Réponse: %s\n", Truncate(compactJSON(e.Response), HistoryPreviewChars))
		} else {
			fmt.Fprintf(&b, "   ❌ Erreur: %s\n", e.Error)
		}
		b.WriteString("\n")
	}
	b.WriteString("💡 Vous pouvez:\n")
	b.WriteString("- \"Efface mon historique\" pour tout supprimer\n")
	b.WriteString("- Continuer à explorer des APIs")

	return Reply{Response: b.String(), History: entries}
}

func HistoryCleared(ok bool) Reply {
	if !ok {
		return Reply{Response: "❌ Impossible d'effacer l'historique."}
	}
	return Reply{Response: "🗑️ Votre historique a été effacé avec succès."}
}

func FavoriteRemoved(name string, ok bool) Reply {
	if !ok {
		return Reply{Response: "❌ Impossible de supprimer le favori."}
	}
	return Reply{Response: fmt.Sprintf("🗑️ Le favori \"%s\" a été supprimé.", name)}
}

func FavoriteNotFound(index, count int) Reply {
	return Reply{
		Response: fmt.Sprintf("❌ Aucun favori à la position %d (vous en avez %d). Consultez \"Mes favoris\" pour voir la liste.", index, count),
	}
}

func DomainAdded(domain string) Reply {
	return Reply{
		Response: fmt.Sprintf("✅ Le domaine **%s** a été ajouté à la liste des domaines autorisés.", domain),
	}
}

func UnknownCommand() Reply {
	return Reply{
		Response: "ℹ️ Commande non reconnue. Essayez \"Mes favoris\", \"Mon historique\" ou \"Ajoute le domaine exemple.com\".",
	}
}

// Help lists the commands available while exploring apiURL.
func Help(apiURL string) Reply {
	return Reply{
		Response: fmt.Sprintf("🤖 Je suis en mode exploration de l'API **%s**.\n\n", apiURL) +
			"**Commandes disponibles**:\n" +
			"- \"Appelle l'endpoint 1\" (ou un numéro)\n" +
			"- \"Appelle /users\" (ou un chemin)\n" +
			"- \"Quels endpoints sont disponibles?\"\n" +
			"- \"Ajoute cette API aux favoris\"\n" +
			"- \"Montre la documentation\"\n" +
			"- \"Mes favoris\" pour voir vos APIs sauvegardées\n" +
			"- \"Mon historique\" pour voir vos appels précédents\n" +
			"- \"Quitte le mode API\" pour revenir au chat normal",
	}
}

func Farewell() Reply {
	return Reply{
		Response: "👋 J'ai quitté le mode exploration API. Vous pouvez maintenant poser des questions normales ou explorer une autre API.",
	}
}

func NotInAPIMode() Reply {
	return Reply{
		Response: "ℹ️ Vous n'êtes pas en mode exploration API. Utilisez \"Explore [URL]\" pour commencer une exploration.",
	}
}

// Failure is the text of an error envelope.
func Failure(prefix string, err error) string {
	return fmt.Sprintf("❌ %s: %s", prefix, err.Error())
}

func endpointsOf(info *store.APIInfo) []store.Endpoint {
	if info == nil {
		return nil
	}
	return info.Endpoints
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "jamais"
	}
	return t.Local().Format(dateLayout)
}
