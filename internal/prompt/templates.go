package prompt

const aqiTemplate = `You are an air quality expert. A user is asking about air quality in {city} on {date}.

Current air quality data:
- AQI: {aqi}
- PM2.5: {pm25} µg/m³
- PM10: {pm10} µg/m³
- Ozone (O3): {o3} µg/m³
- Nitrogen Dioxide (NO2): {no2} µg/m³

User question: {question}

Provide a helpful, natural language response that:
1. Explains the air quality levels and health implications
2. Answers their specific question
3. Gives relevant safety advice if needed
4. Keeps the response concise but informative

Response:`

const documentsTemplate = `You are a helpful assistant that answers questions based on the provided context from documents.

Context from relevant documents:
{context}

Question: {question}

Instructions:
- Answer based only on the provided context
- If the context doesn't contain enough information to answer the question, say so clearly
- Cite specific parts of the documents when relevant
- Keep your answer concise but comprehensive
- Use bullet points if listing multiple items or steps

Answer:`

// videoTemplate asks for a bare JSON object. It must not contain literal
// braces outside slots.
const videoTemplate = `You are a YouTube video strategist. A creator wants to make a video about: "{user_prompt}"

They liked this existing video: "{existing_title}"
Script snippet: "{existing_script}"

Generate:
1. A compelling video title (under 60 characters)
2. A strong hook opening line
3. A 5-step video script outline

Make it engaging and likely to perform well. Focus on the angle that would appeal to their audience.

Respond with a single JSON object only, no markdown, with keys: title (string), hook (string), outline (array of strings).`
